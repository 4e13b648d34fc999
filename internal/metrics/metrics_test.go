package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRPC_CountsByOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(chainRPCCalls.WithLabelValues("system_chain", "ok"))
	errBefore := testutil.ToFloat64(chainRPCCalls.WithLabelValues("system_chain", "error"))

	ObserveRPC("system_chain", time.Now(), nil)
	ObserveRPC("system_chain", time.Now(), errors.New("boom"))
	ObserveRPC("system_chain", time.Now(), nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(chainRPCCalls.WithLabelValues("system_chain", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(chainRPCCalls.WithLabelValues("system_chain", "error")))
}

func TestObserveHTTP_CountsByCode(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("503"))
	ObserveHTTP(503, time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("503")))
}

func TestSetChainReady(t *testing.T) {
	SetChainReady(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(chainReady))
	SetChainReady(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(chainReady))
}
