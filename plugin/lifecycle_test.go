package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/foundation"
)

func TestLifecycleHappyPath(t *testing.T) {
	b := NewBaseState(Hooks{})
	require.True(t, b.Init().OK())
	assert.Equal(t, StateInitialized, b.GetState())
	require.True(t, b.Prepare().OK())
	assert.Equal(t, StatePrepared, b.GetState())
	require.True(t, b.Start().OK())
	assert.Equal(t, StateRunning, b.GetState())
	require.True(t, b.Pause().OK())
	assert.Equal(t, StatePaused, b.GetState())
	require.True(t, b.Resume().OK())
	assert.Equal(t, StateRunning, b.GetState())
	require.True(t, b.Stop().OK())
	assert.Equal(t, StateInitialized, b.GetState())
	require.True(t, b.Deinit().OK())
	assert.Equal(t, StateDestroyed, b.GetState())
}

func TestStartFromCreatedFailsWrongState(t *testing.T) {
	b := NewBaseState(Hooks{})
	err := b.Start()
	assert.Equal(t, foundation.WrongState, err)
	assert.Equal(t, StateCreated, b.GetState(), "failed transition leaves state unchanged")
}

func TestLifecycleCallsAreIdempotent(t *testing.T) {
	b := NewBaseState(Hooks{})
	require.True(t, b.Init().OK())
	require.True(t, b.Init().OK(), "second Init on Initialized is a no-op success")
	assert.Equal(t, StateInitialized, b.GetState())

	require.True(t, b.Prepare().OK())
	require.True(t, b.Prepare().OK())
	assert.Equal(t, StatePrepared, b.GetState())
}

func TestResetReturnsToInitializedFromAnyActiveState(t *testing.T) {
	b := NewBaseState(Hooks{})
	require.True(t, b.Init().OK())
	require.True(t, b.Prepare().OK())
	require.True(t, b.Start().OK())
	require.True(t, b.Reset().OK())
	assert.Equal(t, StateInitialized, b.GetState())
}

func TestHookFailureAbortsTransition(t *testing.T) {
	b := NewBaseState(Hooks{OnPrepare: func() foundation.ErrorCode { return foundation.ErrorInvalidState }})
	require.True(t, b.Init().OK())
	err := b.Prepare()
	assert.Equal(t, foundation.ErrorInvalidState, err)
	assert.Equal(t, StateInitialized, b.GetState(), "failed hook must not advance state")
}

func TestSetGetParameterRoundTrip(t *testing.T) {
	b := NewBaseState(Hooks{})
	require.True(t, b.SetParameter("volume", foundation.NewValue(0.5)).OK())
	v, code := b.GetParameter("volume")
	require.True(t, code.OK())
	f, ok := foundation.ValueAs[float64](v)
	require.True(t, ok)
	assert.Equal(t, 0.5, f)
}

func TestGetParameterMissingReturnsNotExisted(t *testing.T) {
	b := NewBaseState(Hooks{})
	_, code := b.GetParameter("nope")
	assert.Equal(t, foundation.ErrorNotExisted, code)
}

func TestRegInfoValidRejectsOutOfRangeRank(t *testing.T) {
	info := RegInfo{Name: "x", Type: TypeSource, Rank: 101, APIVersion: APIVersion{Major: 1}, Creator: func() (Base, error) { return nil, nil }}
	assert.False(t, info.Valid(APIVersion{Major: 1}))
}

func TestRegInfoValidRejectsAPIMajorMismatch(t *testing.T) {
	info := RegInfo{Name: "x", Type: TypeSource, Rank: 1, APIVersion: APIVersion{Major: 2}, Creator: func() (Base, error) { return nil, nil }}
	assert.False(t, info.Valid(APIVersion{Major: 1}))
}
