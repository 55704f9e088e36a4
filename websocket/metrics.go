// Package websocket - websocket/metrics.go
// file: websocket/metrics.go

package websocket

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"athproof/logger"
)

// Namespace for all AthProof metrics
var metricsNamespace = "AthProof"

// metricsEnabled gates CloudWatch publishing; local development runs with it
// off so the app does not need AWS credentials.
var metricsEnabled = false

// EnableMetrics turns on CloudWatch publishing. Call once from main.
func EnableMetrics(enabled bool) {
	metricsEnabled = enabled
}

// Reuse a single CloudWatch client for all metrics calls
var cwClient = cloudwatch.New(session.Must(session.NewSession()))

// PublishClientConnections pushes the current WebSocket connection count
func PublishClientConnections(count int) {
	putMetric("ClientConnections", float64(count), "Count")
}

// PublishBroadcastBacklog pushes a gauge for broadcast queue depth
func PublishBroadcastBacklog(depth int) {
	putMetric("BroadcastQueueDepth", float64(depth), "Count")
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func putMetric(metricName string, value float64, unit string) {
	if !metricsEnabled {
		return
	}
	_, err := cwClient.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Dimensions: []*cloudwatch.Dimension{
					{
						Name:  aws.String("Site"),
						Value: aws.String("athproof"),
					},
				},
				Timestamp: aws.Time(time.Now()),
				Value:     aws.Float64(value),
				Unit:      aws.String(unit),
			},
		},
	})

	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", metricName, err)
	}
}
