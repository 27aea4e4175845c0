// Command lambda wraps the document core's chi router behind API Gateway's
// HTTP API (v2 payload format), adapting the teacher's cmd/lambda/main.go.
// Kept: the chiadapter.ChiLambdaV2 wrapping and cold-start timing/logging.
// Dropped: the teacher's Supabase-JWT-bypass header rewriting — this module
// issues and validates its own JWTs end-to-end via pkg/auth.JWTAuthenticator,
// so API Gateway never pre-validates on our behalf and there is nothing to
// bypass.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/infrastructure/config"
	"github.com/carta-systems/carta-core/infrastructure/di"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container

	coldStart     = true
	coldStartTime time.Time
)

func init() {
	coldStartTime = time.Now()
	log.Println("lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var documentID valueobjects.DocumentID
	if raw := os.Getenv("DOCUMENT_ID"); raw != "" {
		documentID, err = valueobjects.DocumentIDFromString(raw)
		if err != nil {
			log.Fatalf("invalid DOCUMENT_ID: %v", err)
		}
	} else {
		documentID = valueobjects.NewDocumentID()
	}

	container, err = di.InitializeContainer(ctx, cfg, documentID)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}

	handler := container.Router.Setup()
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	log.Printf("lambda cold start completed in %v", time.Since(coldStartTime))
}

// Handler is the Lambda function handler for API Gateway's HTTP API.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	container.Logger.Info("lambda received request",
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("request_id", req.RequestContext.RequestID),
	)

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	resp.Headers["X-Request-ID"] = req.RequestContext.RequestID

	container.Logger.Info("lambda response",
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
	)

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
