package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"neurodetect/internal/batch"
	"neurodetect/internal/classify"
	"neurodetect/internal/common"
	"neurodetect/internal/service"
)

func main() {
	var (
		dataPath    = flag.String("data", "data", "Path to labeled dataset directory")
		qdaPath     = flag.String("qda-model", common.DefaultQDAModelPath, "Path to QDA model parameters")
		tabnetPath  = flag.String("tabnet-model", common.DefaultTabNetModelPath, "Path to TabNet model parameters")
		outputPath  = flag.String("output", "", "Output directory for reports")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		concurrency = flag.Int("concurrency", 4, "Number of files analyzed in parallel")
		useCleaned  = flag.Bool("use-cleaned", false, "Classify on the cleaned signal instead of the raw one")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if *outputPath == "" {
		*outputPath = fmt.Sprintf("evaluation_%s", time.Now().Format("20060102_150405"))
	}

	files, err := batch.LoadDataset(*dataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("dataset load failed")
	}
	if len(files) == 0 {
		log.Fatal().Str("path", *dataPath).Msg("dataset contains no labeled recordings")
	}

	qdaParams, qdaErr := classify.LoadModelParams(*qdaPath)
	tabnetParams, tabnetErr := classify.LoadModelParams(*tabnetPath)
	qda := classify.NewClassifier("QDA", classify.QDAThresholds(), qdaParams, qdaErr, nil)
	tabnet := classify.NewClassifier("TabNet", classify.TabNetThresholds(), tabnetParams, tabnetErr, nil)

	analyzer := service.NewAnalyzer(common.SamplingRate, qda, tabnet, service.Options{
		UseCleaned: *useCleaned,
	})

	results, err := batch.NewRunner(analyzer, *concurrency).Run(context.Background(), files)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	if err := batch.NewReporter(results, *outputPath).GenerateReport(); err != nil {
		log.Fatal().Err(err).Msg("report generation failed")
	}

	analyzed := results.Total - results.Failed
	fmt.Printf("Analyzed %d/%d files, ensemble accuracy %.2f%%\n",
		analyzed, results.Total, results.Accuracy()*100)
	fmt.Printf("Reports written to %s\n", *outputPath)

	if analyzed == 0 {
		os.Exit(1)
	}
}
