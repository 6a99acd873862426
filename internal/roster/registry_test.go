package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageClaimsAreInvisibleUntilCommit(t *testing.T) {
	r := NewRegistry()

	s1 := r.Stage()
	require.NoError(t, s1.ClaimID("D1-TCH-101001"))
	require.NoError(t, s1.ClaimEmail("pat.okafor@district1.net"))
	require.NoError(t, s1.ClaimName("Pat", "Okafor"))

	// A dropped stage leaves no residue: the same values claim cleanly.
	s2 := r.Stage()
	require.NoError(t, s2.ClaimID("D1-TCH-101001"))
	s2.Commit()

	// After commit the registry enforces the claims.
	s3 := r.Stage()
	assert.Error(t, s3.ClaimID("D1-TCH-101001"))
}

func TestClaimsCollideWithinOneStage(t *testing.T) {
	r := NewRegistry()
	s := r.Stage()

	require.NoError(t, s.ClaimID("D1-STU-101001"))
	assert.Error(t, s.ClaimID("D1-STU-101001"))

	require.NoError(t, s.ClaimName("Mira", "Voss"))
	assert.Error(t, s.ClaimName("Mira", "Tanaka"), "first names are unique run-wide")
	assert.Error(t, s.ClaimName("Elena", "Voss"), "last names are unique run-wide")
	assert.NoError(t, s.ClaimName("Elena", "Tanaka"))
}

func TestEmailClaimsAreCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	s := r.Stage()
	require.NoError(t, s.ClaimEmail("Pat.Okafor@District1.net"))
	assert.Error(t, s.ClaimEmail("pat.okafor@district1.net"))
}

func TestNameListsFeedAvoidPrompts(t *testing.T) {
	r := NewRegistry()
	s := r.Stage()
	require.NoError(t, s.ClaimName("Mira", "Voss"))
	require.NoError(t, s.ClaimName("Elena", "Tanaka"))

	assert.Empty(t, r.FirstNames(), "uncommitted names must not leak into prompts")
	s.Commit()
	assert.Equal(t, []string{"elena", "mira"}, r.FirstNames())
	assert.Equal(t, []string{"tanaka", "voss"}, r.LastNames())
}
