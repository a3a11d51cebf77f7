package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawcraft/contentguard/pkg/telemetry"
)

func TestNewKafkaExporterValidatesSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]interface{}
		wantErr  string
	}{
		{
			name:     "missing host",
			settings: map[string]interface{}{"port": "9092", "topic": "events"},
			wantErr:  "kafka host is required",
		},
		{
			name:     "missing port",
			settings: map[string]interface{}{"host": "localhost", "topic": "events"},
			wantErr:  "kafka port is required",
		},
		{
			name:     "missing topic",
			settings: map[string]interface{}{"host": "localhost", "port": "9092"},
			wantErr:  "kafka topic is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := telemetry.NewKafkaExporter(tt.settings)
			assert.Nil(t, exporter)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestNoopExporter(t *testing.T) {
	exporter := telemetry.NewNoopExporter()
	assert.Equal(t, telemetry.NoopExporterName, exporter.Name())
	assert.NoError(t, exporter.Handle(context.Background(), nil))
	assert.NotPanics(t, exporter.Close)
}
