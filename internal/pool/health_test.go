package pool

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthMonitorStartsUnhealthyOnlyAfterMaxFailures(t *testing.T) {
	hm := NewHealthMonitor([]string{"srv0"}, time.Hour, time.Millisecond)
	hm.SetDialFunc(func(addr string, _ time.Duration) error {
		return errors.New("refused")
	})

	hm.checkAll()
	assert.True(t, hm.IsHealthy("srv0"), "must still be considered healthy before maxFailures is reached")

	hm.checkAll()
	assert.True(t, hm.IsHealthy("srv0"))

	hm.checkAll()
	assert.False(t, hm.IsHealthy("srv0"), "must flip to unhealthy at the 3rd consecutive failure")
}

func TestHealthMonitorRecoversAfterSuccessfulCheck(t *testing.T) {
	fail := true
	hm := NewHealthMonitor([]string{"srv0"}, time.Hour, time.Millisecond)
	hm.SetDialFunc(func(addr string, _ time.Duration) error {
		if fail {
			return errors.New("refused")
		}
		return nil
	})

	for i := 0; i < 3; i++ {
		hm.checkAll()
	}
	assert.False(t, hm.IsHealthy("srv0"))

	fail = false
	hm.checkAll()
	assert.True(t, hm.IsHealthy("srv0"))
}

func TestHealthMonitorUnknownServerIsHealthy(t *testing.T) {
	hm := NewHealthMonitor([]string{"srv0"}, time.Hour, time.Millisecond)
	assert.True(t, hm.IsHealthy("srv-never-checked"))
}

func TestHealthMonitorStartStop(t *testing.T) {
	hm := NewHealthMonitor([]string{"srv0"}, time.Millisecond, time.Millisecond)
	hm.SetDialFunc(func(addr string, _ time.Duration) error { return nil })

	go hm.Start(nil)
	time.Sleep(5 * time.Millisecond)
	hm.Stop()

	assert.True(t, hm.IsHealthy("srv0"))
}
