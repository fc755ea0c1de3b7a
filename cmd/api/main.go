// @title           Policy RAG API
// @version         1.0
// @description     Question answering over uploaded insurance policy documents
// @termsOfService  http://swagger.io/terms/

// @contact.name    PolicyRAG maintainers
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/PolicyRAG/internal/bootstrap"
	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/handlers"
	"github.com/akolanti/PolicyRAG/internal/job"
	"github.com/akolanti/PolicyRAG/internal/mcpServer"
	"github.com/akolanti/PolicyRAG/internal/middleware"
	"github.com/akolanti/PolicyRAG/internal/server"
	"github.com/akolanti/PolicyRAG/internal/worker"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

var (
	configPath        string
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&configPath, "config", "", "path to config.yaml")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		logger_i.Init(false, config.LOG_LEVEL_DEV)
		logger_i.NewLogger("main").Error("Loading settings failed", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.ListenAddr = listenAddr
	}

	logger_i.Init(settings.IsProd, settings.LogLevel)
	var logger = logger_i.NewLogger("main")
	middleware.Init(settings)

	if err := os.MkdirAll(settings.UploadDir, 0o750); err != nil {
		logger.Error("Creating upload directory failed", "dir", settings.UploadDir, "error", err)
		os.Exit(1)
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	app := bootstrap.Build(serviceContext, settings, bootstrap.Options{Remote: true})
	app.Engine.StartJanitor(serviceContext, config.JanitorInterval)

	//init buffered job channel
	jobChannel := make(chan jobModel.IngestJob, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	logger.Info("Starting job service")
	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		JobStore:          app.JobStore,
	})

	//init worker pool
	worker.InitServices(jobService, app.Service)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	var mcpHandler http.Handler
	if settings.MCPEnabled {
		mcpHandler = mcpServer.NewServer(app.Service).Handler()
	}
	router := server.NewRouter(handlers.NewHandler(app.Service, jobService, settings.UploadDir), settings.CORSOrigins, mcpHandler)

	logger.Info("Service ready",
		"ragInitialized", app.Service.IsInitialized(),
		"llmConfigured", app.Service.HasLanguageModel(),
		"documents", len(app.Service.GetDocumentsInfo()))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.ListenAddr, router)

	<-stopExecution
	logger.Info("Server stopped")
}
