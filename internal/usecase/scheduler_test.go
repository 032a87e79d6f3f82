package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

type countingRunner struct {
	calls int
	err   error
}

func (r *countingRunner) RunOnce(context.Context) error {
	r.calls++
	return r.err
}

func TestSchedulerTriggersRunner(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	runner := &countingRunner{err: errors.New("partial outage")}
	s := NewScheduler(driver, runner, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	driver.job(time.Now())

	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, int64(2), s.Runs())

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, &countingRunner{}, nil)
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
