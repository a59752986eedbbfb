package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/climatedata/unfcccdi/internal/api"
	"github.com/climatedata/unfcccdi/internal/api/controller"
	"github.com/climatedata/unfcccdi/internal/pkg/constants"
	"github.com/climatedata/unfcccdi/internal/pkg/logger"
	"github.com/climatedata/unfcccdi/internal/pkg/store"
	"github.com/climatedata/unfcccdi/internal/pkg/store/xpgx"
	"github.com/climatedata/unfcccdi/internal/service/flexquery"
	"github.com/climatedata/unfcccdi/internal/service/zenodo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initConfig()

	if err := logger.Init(viper.GetBool("debug")); err != nil {
		panic(err)
	}
	defer logger.Sync()

	pool, err := xpgx.New(ctx, viper.GetString(constants.ViperPgDSN))
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer pool.Close()

	source, err := buildSource(ctx)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	svc, err := api.NewAPIService(source, store.NewStore(pool))
	if err != nil {
		logger.Fatal(ctx, err)
	}

	go svc.Serve(viper.GetString(constants.ViperListenAddr))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "shutdown: %s", err.Error())
	}
}

// buildSource wires either the live Flexible Query reader or the Zenodo
// bulk fallback, per configuration.
func buildSource(ctx context.Context) (controller.QuerySource, error) {
	normalize := viper.GetBool(constants.ViperNormalizeGasNames)

	if viper.GetString(constants.ViperDataSource) == "zenodo" {
		return zenodo.NewReader(ctx, viper.GetString(constants.ViperZenodoRecordURL), &normalize)
	}

	return flexquery.NewReader(ctx, flexquery.Config{
		BaseURL:           viper.GetString(constants.ViperAPIBaseURL),
		BatchSize:         viper.GetInt(constants.ViperQueryBatchSize),
		NormalizeGasNames: &normalize,
	})
}

func initConfig() {
	viper.SetDefault(constants.ViperListenAddr, ":8080")
	viper.SetDefault(constants.ViperAPIBaseURL, flexquery.DefaultBaseURL)
	viper.SetDefault(constants.ViperDataSource, "api")
	viper.SetDefault(constants.ViperZenodoRecordURL, zenodo.DefaultRecordURL)
	viper.SetDefault(constants.ViperNormalizeGasNames, true)
	viper.SetDefault(constants.ViperQueryBatchSize, flexquery.DefaultBatchSize)
	viper.SetDefault(constants.ViperPgDSN, "postgres://localhost:5432/unfcccdi")
	viper.SetDefault("debug", false)
	viper.AutomaticEnv()
}
