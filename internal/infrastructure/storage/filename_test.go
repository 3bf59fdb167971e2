package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMungeFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		allowed  []string
		expected string
	}{
		{"single extension", "photo.png", []string{"png"}, "photo.png"},
		{"inner extension not allowed", "exploit.php.png", []string{"png", "jpg"}, "exploit.php_.png"},
		{"inner extension allowed", "archive.jpg.png", []string{"png", "jpg"}, "archive.jpg.png"},
		{"inner extension case insensitive", "photo.JPG.png", []string{"png", "jpg"}, "photo.JPG.png"},
		{"dangerous without list", "shell.php", nil, "shell.php.txt"},
		{"dangerous inner without list", "shell.php.gif", nil, "shell.php.gif.txt"},
		{"already txt", "notes.py.txt", nil, "notes.py.txt"},
		{"safe without list", "report.pdf", nil, "report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MungeFilename(tt.filename, tt.allowed))
		})
	}
}

func TestNormalizeFilename(t *testing.T) {
	// "e" + combining acute accent -> "é"
	assert.Equal(t, "caf\u00e9.png", NormalizeFilename("cafe\u0301.png"))
}

func TestCollisionName(t *testing.T) {
	assert.Equal(t, "photo_0.png", CollisionName("photo.png", 0))
	assert.Equal(t, "archive.tar_3.gz", CollisionName("archive.tar.gz", 3))
	assert.Equal(t, "README_1", CollisionName("README", 1))
	assert.Equal(t, ".env_0", CollisionName(".env", 0))
}

func TestResolveDirectory(t *testing.T) {
	now := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "images/2026-03", ResolveDirectory("images/[date:custom:Y]-[date:custom:m]", now))
	assert.Equal(t, "2026/03/07", ResolveDirectory("/[date:custom:Y]/[date:custom:m]/[date:custom:d]/", now))
	assert.Equal(t, "", ResolveDirectory("", now))
}

func TestURI(t *testing.T) {
	assert.Equal(t, "public://2026-03/photo.png", BuildURI("", "2026-03", "photo.png"))
	assert.Equal(t, "private://photo.png", BuildURI("private", "", "photo.png"))

	scheme, p, err := ParseURI("public://a/../../etc/passwd")
	assert.NoError(t, err)
	assert.Equal(t, "public", scheme)
	assert.Equal(t, "etc/passwd", p)

	_, _, err = ParseURI("no-scheme")
	assert.ErrorIs(t, err, ErrInvalidURI)
	_, _, err = ParseURI("public:///")
	assert.ErrorIs(t, err, ErrInvalidURI)
}
