package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"festa-events-pipeline/internal/models"
	"festa-events-pipeline/internal/services"
)

// feedBaseURL is the DataTourisme webservice prefix an API key is appended to
// when no explicit feed url is given.
const feedBaseURL = "https://diffuseur.datatourisme.fr/webservice/"

// IngestResponse is the JSON body returned on success.
type IngestResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RunID          string `json:"run_id"`
	Fetched        int    `json:"fetched"`
	Existing       int    `json:"existing"`
	Adapted        int    `json:"adapted"`
	Rejected       int    `json:"rejected"`
	Inserted       int    `json:"inserted"`
	InsertFailed   int    `json:"insert_failed"`
	Purged         int64  `json:"purged"`
	ProcessingTime int64  `json:"processing_time_ms"`
}

// resolveFeedURL picks the feed url from the request: an explicit url query
// parameter wins, otherwise the X-API-Key header is appended to the webservice
// prefix. Returns "" when neither is present.
func resolveFeedURL(request events.APIGatewayProxyRequest) string {
	if url := request.QueryStringParameters["url"]; url != "" {
		return url
	}
	for name, value := range request.Headers {
		if name == "X-API-Key" || name == "x-api-key" {
			if value != "" {
				return feedBaseURL + value
			}
		}
	}
	return ""
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// HandleIngest is the main Lambda handler: purge expired events, then run the
// feed through the pipeline into the warehouse.
func HandleIngest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	feedURL := resolveFeedURL(request)
	if feedURL == "" {
		log.Printf("ERROR: request carries neither url parameter nor X-API-Key header")
		return errorResponse(400, "missing url parameter or X-API-Key header"), nil
	}

	dbPath := os.Getenv("FESTA_WAREHOUSE_PATH")
	if dbPath == "" {
		dbPath = "/tmp/festa.duckdb"
	}
	warehouse, err := services.OpenWarehouse(dbPath)
	if err != nil {
		log.Printf("ERROR: open warehouse: %v", err)
		return errorResponse(500, "warehouse unavailable"), nil
	}
	defer warehouse.Close()

	purged, err := warehouse.DeleteExpiredEvents(ctx)
	if err != nil {
		log.Printf("ERROR: purge expired events: %v", err)
		return errorResponse(500, "purge failed"), nil
	}

	classifier := services.NewClassifier(services.DefaultFilterConfig())
	adapter := services.NewAdapter(classifier, services.NewZippopotamClient())
	feed := services.NewDataTourismeClient(feedURL)
	pipeline := services.NewPipeline(feed, adapter, warehouse)

	runID := models.NewRunID(time.Now())
	report, err := pipeline.Run(ctx, runID)
	if err != nil {
		log.Printf("ERROR: pipeline run %s: %v", runID, err)
		return errorResponse(500, "pipeline run failed"), nil
	}

	if os.Getenv("FESTA_ARCHIVE_BUCKET") != "" {
		archive, err := services.NewArchive(ctx)
		if err != nil {
			log.Printf("WARNING: open archive: %v", err)
		} else if _, err := archive.UploadEvents(ctx, runID, report.Adapted); err != nil {
			log.Printf("WARNING: archive upload: %v", err)
		}
	}

	response := IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Inserted %d of %d fetched events", report.Inserted, report.Fetched),
		RunID:   report.RunID,
		Fetched: report.Fetched, Existing: report.Existing,
		Adapted: len(report.Adapted), Rejected: len(report.Rejected),
		Inserted: report.Inserted, InsertFailed: report.InsertFailed,
		Purged:         purged,
		ProcessingTime: time.Since(start).Milliseconds(),
	}
	body, err := json.Marshal(response)
	if err != nil {
		return errorResponse(500, "marshal response"), nil
	}

	log.Printf("Ingest run %s completed in %dms", runID, response.ProcessingTime)
	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

func main() {
	lambda.Start(HandleIngest)
}
