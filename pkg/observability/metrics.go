package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes CloudWatch custom metrics under a single namespace.
// infrastructure/di's ProvideMetrics references this type (via
// observability.NewMetrics) without it ever having been defined in the
// teacher tree; this is that missing definition, generalized from counting
// graph commands to counting document-core transactions and layout runs.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a Metrics sink publishing under namespace, e.g.
// "CartaDocumentCore/production".
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{namespace: namespace, client: client}
}

// RecordTransaction emits a Transactions count, dimensioned by origin and
// whether it committed or rolled back, from application/adapter.Adapter
// after each Transaction call.
func (m *Metrics) RecordTransaction(ctx context.Context, origin string, committed bool) {
	outcome := "committed"
	if !committed {
		outcome = "rolledback"
	}
	m.put(ctx, "Transactions", 1, types.StandardUnitCount, []types.Dimension{
		{Name: aws.String("Origin"), Value: aws.String(origin)},
		{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	})
}

// RecordLayoutDuration emits a LayoutDuration timing, dimensioned by the
// action name, from application/layoutactions.Actions after each run.
func (m *Metrics) RecordLayoutDuration(ctx context.Context, action string, d time.Duration) {
	m.put(ctx, "LayoutDurationMillis", float64(d.Milliseconds()), types.StandardUnitMilliseconds, []types.Dimension{
		{Name: aws.String("Action"), Value: aws.String(action)},
	})
}

// put is a best-effort fire-and-forget publish: a metrics outage must never
// fail the transaction or layout run it is reporting on.
func (m *Metrics) put(ctx context.Context, name string, value float64, unit types.StandardUnit, dims []types.Dimension) {
	if m.client == nil {
		return
	}
	_, _ = m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Dimensions: dims,
				Timestamp:  aws.Time(time.Now()),
			},
		},
	})
}
