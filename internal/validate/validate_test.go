package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/learnfast-registration/internal/types"
)

func TestEmail(t *testing.T) {
	valid := []string{
		"a@b.com",
		"student.name+tag@uni.example.org",
		"UPPER@CASE.IO",
		"x@y.z",
		"a@b.c.d",
	}
	for _, s := range valid {
		assert.True(t, Email(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"plainaddress",
		"missing-dot@domain",
		"@b.com",
		"a@.com",
		"a@b.",
		"a b@c.com",
		"a@b .com",
		"a@@b.com",
		"a@b@c.com",
	}
	for _, s := range invalid {
		assert.False(t, Email(s), "expected %q to be invalid", s)
	}
}

func TestPasswordLength(t *testing.T) {
	assert.False(t, PasswordLength(""))
	assert.False(t, PasswordLength("1234567"))
	assert.True(t, PasswordLength("12345678"))
	assert.True(t, PasswordLength("longenough"))
	// Length is counted in characters, not bytes.
	assert.False(t, PasswordLength("ééééééé"))
	assert.True(t, PasswordLength("éééééééé"))
}

func TestPasswordBytes(t *testing.T) {
	assert.True(t, PasswordBytes(strings.Repeat("a", MaxPasswordBytes)))
	assert.False(t, PasswordBytes(strings.Repeat("a", MaxPasswordBytes+1)))
	// 36 two-byte runes fill the limit exactly.
	assert.True(t, PasswordBytes(strings.Repeat("é", 36)))
	assert.False(t, PasswordBytes(strings.Repeat("é", 37)))
}

func TestRequired(t *testing.T) {
	assert.True(t, Required())
	assert.True(t, Required("a", "b"))
	assert.False(t, Required("a", ""))
	assert.False(t, Required("   ", "b"))
	assert.False(t, Required("\t\n"))
}

func TestCheckQuickRequest(t *testing.T) {
	v := New()

	t.Run("valid request has no failures", func(t *testing.T) {
		got := v.Check(types.QuickRegisterRequest{Email: "a@b.com", Password: "longenough"})
		assert.Nil(t, got)
	})

	t.Run("blank fields are reported as required only", func(t *testing.T) {
		got := v.Check(types.QuickRegisterRequest{Email: "  ", Password: ""})
		require.Len(t, got, 2)
		assert.Equal(t, Failure{Field: "email", Rule: RuleRequired}, got[0])
		assert.Equal(t, Failure{Field: "password", Rule: RuleRequired}, got[1])
	})

	t.Run("format failures use json field names", func(t *testing.T) {
		got := v.Check(types.QuickRegisterRequest{Email: "nope", Password: "short"})
		assert.Equal(t, []Failure{
			{Field: "email", Rule: RuleEmail},
			{Field: "password", Rule: RulePassword},
		}, got)
	})

	t.Run("overlong password is a validation failure", func(t *testing.T) {
		got := v.Check(types.QuickRegisterRequest{Email: "a@b.com", Password: strings.Repeat("p", MaxPasswordBytes+1)})
		assert.Equal(t, []Failure{{Field: "password", Rule: RulePassMax}}, got)
	})
}

func TestCheckRegisterRequest(t *testing.T) {
	v := New()
	valid := types.RegisterRequest{
		Firstname: "Ada",
		Lastname:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "analytical",
		Terms:     true,
	}

	assert.Nil(t, v.Check(valid))

	noTerms := valid
	noTerms.Terms = false
	assert.Equal(t, []Failure{{Field: "terms", Rule: RuleTerms}}, v.Check(noTerms))

	noLastname := valid
	noLastname.Lastname = ""
	assert.Equal(t, []Failure{{Field: "lastname", Rule: RuleRequired}}, v.Check(noLastname))

	// Course is optional.
	withCourse := valid
	withCourse.Course = "go-101"
	assert.Nil(t, v.Check(withCourse))
}

func TestHas(t *testing.T) {
	failures := []Failure{{Field: "email", Rule: RuleEmail}}
	assert.True(t, Has(failures, RuleRequired, RuleEmail))
	assert.False(t, Has(failures, RuleTerms))
	assert.False(t, Has(nil, RuleEmail))
}
