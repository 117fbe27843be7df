package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
)

func rawSourceInfo(name string, rank int) plugin.RegInfo {
	return plugin.RegInfo{
		Name:       name,
		Type:       plugin.TypeSource,
		Rank:       rank,
		APIVersion: HostAPIVersion,
		OutCaps:    meta.CapabilitySet{meta.NewCapability("*")},
		Creator:    func() (plugin.Base, error) { return plugin.NewBaseState(plugin.Hooks{}), nil },
	}
}

func TestRegisterRejectsOutOfRangeRank(t *testing.T) {
	r := New()
	info := rawSourceInfo("bad-rank", 101)
	err := r.Register(info)
	assert.Error(t, err)
}

func TestRegisterRejectsAPIMajorMismatch(t *testing.T) {
	r := New()
	info := rawSourceInfo("old-api", 50)
	info.APIVersion = plugin.APIVersion{Major: 0, Minor: 9}
	err := r.Register(info)
	assert.Error(t, err)
}

func TestRegisterAllowsReregistration(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(rawSourceInfo("dup", 10)))
	require.NoError(t, r.Register(rawSourceInfo("dup", 20)))
	info, err := r.Get(plugin.TypeSource, "dup")
	require.NoError(t, err)
	assert.Equal(t, 20, info.Rank)
}

func TestSelectBreaksTiesByRank(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(rawSourceInfo("low", 10)))
	require.NoError(t, r.Register(rawSourceInfo("high", 90)))

	want := meta.New()
	meta.Set(want, meta.TagMime, "audio/raw")

	best, err := r.Select(plugin.TypeSource, want)
	require.NoError(t, err)
	assert.Equal(t, "high", best.Name)
}

func TestSelectExcludesIncompatibleRegardlessOfRank(t *testing.T) {
	r := New()
	onlyVideo := rawSourceInfo("video-only", 100)
	onlyVideo.OutCaps = meta.CapabilitySet{meta.NewCapability("video/*")}
	require.NoError(t, r.Register(onlyVideo))
	require.NoError(t, r.Register(rawSourceInfo("audio-low-rank", 1)))

	want := meta.New()
	meta.Set(want, meta.TagMime, "audio/raw")

	best, err := r.Select(plugin.TypeSource, want)
	require.NoError(t, err)
	assert.Equal(t, "audio-low-rank", best.Name)
}

func TestSelectFailsWhenNoneMatch(t *testing.T) {
	r := New()
	onlyVideo := rawSourceInfo("video-only", 100)
	onlyVideo.OutCaps = meta.CapabilitySet{meta.NewCapability("video/*")}
	require.NoError(t, r.Register(onlyVideo))

	want := meta.New()
	meta.Set(want, meta.TagMime, "audio/raw")
	_, err := r.Select(plugin.TypeSource, want)
	assert.Error(t, err)
}

func TestCreateInstantiatesViaCreator(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(rawSourceInfo("x", 1)))
	inst, err := r.Create(plugin.TypeSource, "x")
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, plugin.StateCreated, inst.GetState())
}

func TestApplyManifestUpdatesRankOfExistingPlugin(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(rawSourceInfo("mine", 5)))
	err := r.ApplyManifest(ManifestDescriptor{Name: "mine", Type: "source", Rank: 77, Enabled: true})
	require.NoError(t, err)
	info, err := r.Get(plugin.TypeSource, "mine")
	require.NoError(t, err)
	assert.Equal(t, 77, info.Rank)
}

func TestApplyManifestDisabledIsNoop(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(rawSourceInfo("mine", 5)))
	err := r.ApplyManifest(ManifestDescriptor{Name: "mine", Type: "source", Rank: 77, Enabled: false})
	require.NoError(t, err)
	info, err := r.Get(plugin.TypeSource, "mine")
	require.NoError(t, err)
	assert.Equal(t, 5, info.Rank)
}

func TestApplyManifestUnknownTypeErrors(t *testing.T) {
	r := New()
	err := r.ApplyManifest(ManifestDescriptor{Name: "mine", Type: "bogus", Rank: 1, Enabled: true})
	assert.Error(t, err)
}
