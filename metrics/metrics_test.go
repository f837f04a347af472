package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	ProviderCall("blockstream", "ok")
	ProviderCall("blockstream", "ok")
	ProviderCall("blockstream", "error")
	assert.Equal(t, 2.0, testutil.ToFloat64(prometheusProviderCalls.WithLabelValues("blockstream", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prometheusProviderCalls.WithLabelValues("blockstream", "error")))

	before := testutil.ToFloat64(prometheusFallbackExhausted)
	FallbackExhausted()
	assert.Equal(t, before+1, testutil.ToFloat64(prometheusFallbackExhausted))

	ConfirmationPoll("pending")
	assert.Equal(t, 1.0, testutil.ToFloat64(prometheusConfirmationPolls.WithLabelValues("pending")))

	Send("DOGE", "success")
	assert.Equal(t, 1.0, testutil.ToFloat64(prometheusSendsTotal.WithLabelValues("DOGE", "success")))
}
