package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTLSFilesConfig(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.pem")
	assert.Nil(t, os.WriteFile(junk, []byte("not a cert"), 0600))

	cases := []struct {
		Name      string
		Files     TLSFiles
		ExpectNil bool
		ExpectErr bool
	}{
		{"Empty", TLSFiles{}, true, false},
		{"CertWithoutKey", TLSFiles{Cert: "a.pem"}, true, true},
		{"KeyWithoutCert", TLSFiles{Key: "a.key"}, true, true},
		{"MissingCA", TLSFiles{CACert: filepath.Join(dir, "nope.pem")}, true, true},
		{"BadCA", TLSFiles{CACert: junk}, true, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			cfg, err := c.Files.Config()

			assert.Equal(t, c.ExpectNil, cfg == nil)
			assert.Equal(t, c.ExpectErr, err != nil)
		})
	}
}
