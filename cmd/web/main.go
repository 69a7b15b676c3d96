package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/facebookgo/flagenv"
	_ "github.com/joho/godotenv/autoload"

	"github.com/apooravmalik/tagbot/internal"
)

var (
	bind          = flag.String("bind", ":4000", "TCP host:port to bind on")
	databaseURL   = flag.String("database-url", "", "Postgres database URL")
	redisURL      = flag.String("redis-url", "", "Valkey/Redis URL for the generated-SQL cache (optional)")
	ollamaURL     = flag.String("ollama-url", "http://localhost:11500/v1", "OpenAI-compatible model endpoint")
	ollamaAPIKey  = flag.String("ollama-api-key", "ollama", "bearer token for the model endpoint")
	genModel      = flag.String("gen-model", "sql_gen", "fine-tuned SQL generation model")
	embedModel    = flag.String("embed-model", "nomic-embed-text", "embedding model for the schema index")
	datasetBucket = flag.String("dataset-bucket", "", "S3 bucket for dataset exports (optional)")
	slogLevel     = flag.String("slog-level", "INFO", "log level")
)

func main() {
	flagenv.Parse()
	flag.Parse()

	internal.InitSlog(*slogLevel)

	opts := Options{
		DatabaseURL:   *databaseURL,
		RedisURL:      *redisURL,
		OllamaURL:     *ollamaURL,
		OllamaAPIKey:  *ollamaAPIKey,
		GenModel:      *genModel,
		EmbedModel:    *embedModel,
		DatasetBucket: *datasetBucket,
	}

	if *datasetBucket != "" {
		awscfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		opts.S3Client = s3.NewFromConfig(awscfg)
	}

	s, err := New(opts)
	if err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	s.register(mux)

	var h http.Handler = mux
	h = requestLogger(h)

	slog.Info("now listening", "url", "http://localhost"+*bind)
	log.Fatal(http.ListenAndServe(*bind, h))
}
