// Package fields parses raw form input into length and charset constrained
// values. A value of one of these types has always passed its parser.
package fields

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	TitleMaxChars           = 256
	DescriptionMaxChars     = 512
	ContentMaxChars         = 8129
	NameMaxChars            = 256
	UserDescriptionMaxChars = 512
	EmailMaxChars           = 320
	PasswordMaxChars        = 64
	UsernameMaxChars        = 64
	TagMaxChars             = 64
	TagsMinCount            = 1
	TagsMaxCount            = 10
	// Room for the maximum number of tags plus one separator between each.
	TagsMaxChars = TagMaxChars*TagsMaxCount + TagsMaxCount - 1
	CodeLength   = 6
)

var (
	ErrInvalid         = errors.New("fields: invalid value")
	ErrNotEnoughTags   = errors.New("fields: not enough tags")
	ErrTooManyTags     = errors.New("fields: too many tags")
	ErrInvalidTag      = errors.New("fields: invalid tag")
	ErrPasswordsDiffer = errors.New("fields: passwords differ")
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9\-_]{1,64}$`)
	tagRe      = regexp.MustCompile(`^[A-Za-z0-9\-_]{1,64}$`)
	codeRe     = regexp.MustCompile(`^[0-9]{6}$`)
)

func bounded(s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min || n > max {
		return ErrInvalid
	}
	return nil
}

type Title string

func ParseTitle(s string) (Title, error) {
	if err := bounded(s, 1, TitleMaxChars); err != nil {
		return "", err
	}
	return Title(s), nil
}

// Description is the short summary shown under a post title.
type Description string

func ParseDescription(s string) (Description, error) {
	if err := bounded(s, 1, DescriptionMaxChars); err != nil {
		return "", err
	}
	return Description(s), nil
}

// Content is the markdown body of a post or comment.
type Content string

func ParseContent(s string) (Content, error) {
	if err := bounded(s, 1, ContentMaxChars); err != nil {
		return "", err
	}
	return Content(s), nil
}

type Username string

func ParseUsername(s string) (Username, error) {
	if !usernameRe.MatchString(s) {
		return "", ErrInvalid
	}
	return Username(s), nil
}

type Email string

func ParseEmail(s string) (Email, error) {
	if err := bounded(s, 1, EmailMaxChars); err != nil {
		return "", err
	}
	return Email(s), nil
}

type Password string

func ParsePassword(s string) (Password, error) {
	if err := bounded(s, 1, PasswordMaxChars); err != nil {
		return "", err
	}
	return Password(s), nil
}

// PasswordPair is a password typed twice.
type PasswordPair struct {
	password Password
}

func ParsePasswordPair(password, repeat Password) (PasswordPair, error) {
	if password != repeat {
		return PasswordPair{}, ErrPasswordsDiffer
	}
	return PasswordPair{password: password}, nil
}

func (p PasswordPair) Password() Password { return p.password }

// Name is the display name of a user.
type Name string

func ParseName(s string) (Name, error) {
	if err := bounded(s, 1, NameMaxChars); err != nil {
		return "", err
	}
	return Name(s), nil
}

// UserDescription is the free-form profile text. It may be empty.
type UserDescription string

func ParseUserDescription(s string) (UserDescription, error) {
	if err := bounded(s, 0, UserDescriptionMaxChars); err != nil {
		return "", err
	}
	return UserDescription(s), nil
}

// Code is a six digit email verification or password reset code.
type Code string

func ParseCode(s string) (Code, error) {
	if !codeRe.MatchString(s) {
		return "", ErrInvalid
	}
	return Code(s), nil
}

// Tags is a deduplicated, sorted set of tag names.
type Tags []string

// ParseTags splits on whitespace. The count limits apply to the raw list;
// duplicates are then collapsed.
func ParseTags(s string) (Tags, error) {
	raw := strings.Fields(s)
	if len(raw) < TagsMinCount {
		return nil, ErrNotEnoughTags
	}
	if len(raw) > TagsMaxCount {
		return nil, ErrTooManyTags
	}

	set := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		if !tagRe.MatchString(tag) {
			return nil, ErrInvalidTag
		}
		set[tag] = struct{}{}
	}

	tags := make(Tags, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// ParseTag validates a single tag name, e.g. from a URL.
func ParseTag(s string) (string, error) {
	if !tagRe.MatchString(s) {
		return "", ErrInvalidTag
	}
	return s, nil
}

func (t Tags) String() string {
	return strings.Join(t, " ")
}
