package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "tabun-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestOtlpConnConfigEnabled(t *testing.T) {
	require.False(t, OtlpConnConfig{}.enabled())
	require.True(t, OtlpConnConfig{HttpEndpoint: "http://localhost:4318"}.enabled())
	require.True(t, OtlpConnConfig{GrpcEndpoint: "http://localhost:4317"}.enabled())
}
