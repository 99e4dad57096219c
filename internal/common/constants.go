package common

// Signal contract constants. These are part of the external compatibility
// contract and must not change between releases.
const (
	SamplingRate    = 173.61 // Hz, Bonn dataset
	NominalDuration = 23.6   // seconds
	NominalSamples  = 4097
)

// Canonical class names, index-aligned with probability vectors.
const (
	ClassNormal            = "normal"
	ClassSeizure           = "seizure"
	ClassNeurodegeneration = "neurodegeneration"
	ClassUnknown           = "Unknown"
)

// ClassNames maps probability-vector positions [0,1,2] to class names.
var ClassNames = [3]string{ClassNormal, ClassSeizure, ClassNeurodegeneration}

// Environment variable keys
const (
	EnvConfigFile       = "CONFIG_FILE"
	EnvDataPath         = "DATA_PATH"
	EnvUploadDir        = "UPLOAD_DIR"
	EnvQDAModelPath     = "QDA_MODEL_PATH"
	EnvTabNetModelPath  = "TABNET_MODEL_PATH"
	EnvListenPort       = "LISTEN_PORT"
	EnvMetricsPort      = "METRICS_PORT"
	EnvPredictTimeout   = "PREDICT_TIMEOUT"
	EnvUseCleanedSignal = "USE_CLEANED_SIGNAL"
)

// Configuration defaults
const (
	DefaultQDAModelPath    = "ml_models/qda_model.json"
	DefaultTabNetModelPath = "ml_models/tabnet_model.json"
	DefaultUploadDir       = "uploads"
	DefaultListenPort      = 8000
	DefaultMetricsPort     = 9090
)

// Validation constants
const (
	MinPort = 1024
	MaxPort = 65535
)
