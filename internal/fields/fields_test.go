package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleBoundaries(t *testing.T) {
	_, err := ParseTitle("")
	assert.ErrorIs(t, err, ErrInvalid)

	title, err := ParseTitle(strings.Repeat("a", TitleMaxChars))
	require.NoError(t, err)
	assert.Len(t, string(title), TitleMaxChars)

	_, err = ParseTitle(strings.Repeat("a", TitleMaxChars+1))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLengthsCountRunesNotBytes(t *testing.T) {
	// 256 three-byte runes.
	_, err := ParseTitle(strings.Repeat("竹", TitleMaxChars))
	assert.NoError(t, err)

	_, err = ParseTitle(strings.Repeat("竹", TitleMaxChars+1))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBoundedFields(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) error
		max   int
	}{
		{"description", func(s string) error { _, err := ParseDescription(s); return err }, DescriptionMaxChars},
		{"content", func(s string) error { _, err := ParseContent(s); return err }, ContentMaxChars},
		{"email", func(s string) error { _, err := ParseEmail(s); return err }, EmailMaxChars},
		{"password", func(s string) error { _, err := ParsePassword(s); return err }, PasswordMaxChars},
		{"name", func(s string) error { _, err := ParseName(s); return err }, NameMaxChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.parse(""))
			assert.NoError(t, tt.parse(strings.Repeat("x", tt.max)))
			assert.Error(t, tt.parse(strings.Repeat("x", tt.max+1)))
		})
	}
}

func TestUserDescriptionMayBeEmpty(t *testing.T) {
	d, err := ParseUserDescription("")
	require.NoError(t, err)
	assert.Equal(t, UserDescription(""), d)

	_, err = ParseUserDescription(strings.Repeat("x", UserDescriptionMaxChars+1))
	assert.Error(t, err)
}

func TestUsername(t *testing.T) {
	for _, ok := range []string{"a", "neor_user-1", strings.Repeat("z", UsernameMaxChars)} {
		_, err := ParseUsername(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "with space", "ünicode", "a/b", strings.Repeat("z", UsernameMaxChars+1)} {
		_, err := ParseUsername(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}

func TestPasswordPair(t *testing.T) {
	pair, err := ParsePasswordPair("hunter22", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, Password("hunter22"), pair.Password())

	_, err = ParsePasswordPair("hunter22", "hunter23")
	assert.ErrorIs(t, err, ErrPasswordsDiffer)
}

func TestCode(t *testing.T) {
	_, err := ParseCode("123456")
	assert.NoError(t, err)

	for _, bad := range []string{"", "12345", "1234567", "12345a", " 123456"} {
		_, err := ParseCode(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}

func TestTagsDeduplicate(t *testing.T) {
	tags, err := ParseTags("a b a")
	require.NoError(t, err)
	assert.Equal(t, Tags{"a", "b"}, tags)
	assert.Equal(t, "a b", tags.String())
}

func TestTagsAreCaseSensitive(t *testing.T) {
	tags, err := ParseTags("Go go")
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestTagsCount(t *testing.T) {
	_, err := ParseTags("   ")
	assert.ErrorIs(t, err, ErrNotEnoughTags)

	ten := strings.TrimSpace(strings.Repeat("t ", TagsMaxCount))
	_, err = ParseTags(ten)
	assert.NoError(t, err)

	eleven := ten + " u"
	_, err = ParseTags(eleven)
	assert.ErrorIs(t, err, ErrTooManyTags)
}

func TestTagsRejectInvalid(t *testing.T) {
	_, err := ParseTags("ok not/ok")
	assert.ErrorIs(t, err, ErrInvalidTag)

	_, err = ParseTags(strings.Repeat("x", TagMaxChars+1))
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestTagsMaxChars(t *testing.T) {
	assert.Equal(t, 649, TagsMaxChars)
}
