package mysqlapm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitNewRelicApp_Disabled(t *testing.T) {
	tests := []struct {
		name       string
		appName    string
		licenseKey string
	}{
		{name: "No app name", licenseKey: "0123456789012345678901234567890123456789"},
		{name: "No license key", appName: "nri-mysql-events"},
		{name: "Nothing configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := InitNewRelicApp(tt.appName, tt.licenseKey, time.Millisecond)
			assert.False(t, tracer.Enabled())
			assert.Nil(t, tracer.StartTransaction("poll"))
			tracer.Shutdown(time.Millisecond)
		})
	}
}

func TestWithTransaction_NilTransaction(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTransaction(ctx, nil))
}

func TestTracer_NilReceiver(t *testing.T) {
	var tracer *Tracer
	assert.False(t, tracer.Enabled())
	assert.Nil(t, tracer.StartTransaction("poll"))
}
