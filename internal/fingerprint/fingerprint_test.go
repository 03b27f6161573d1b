package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeKnownVector(t *testing.T) {
	digest := Compute([]byte("hello"))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", digest)
}

func TestComputeIsContentOnly(t *testing.T) {
	a := Compute([]byte("same bytes"))
	b := Compute([]byte("same bytes"))
	c := Compute([]byte("same bytes."))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestComputeEmptyInput(t *testing.T) {
	// sha256 of zero bytes is still a well-defined digest
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Compute(nil),
	)
}

func TestDocumentID(t *testing.T) {
	digest := Compute([]byte("doc"))
	id := DocumentID(digest)

	assert.True(t, strings.HasPrefix(id, "doc_"))
	assert.Equal(t, "doc_"+digest, id)
}
