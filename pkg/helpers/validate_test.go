package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dc4eu/didengine/pkg/model"
)

func TestCheckSimpleAPIServer(t *testing.T) {
	tts := []struct {
		name    string
		have    model.APIServer
		wantErr bool
	}{
		{
			name:    "empty addr fails required",
			have:    model.APIServer{},
			wantErr: true,
		},
		{
			name:    "addr set passes",
			have:    model.APIServer{Addr: ":8080"},
			wantErr: false,
		},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSimple(tt.have)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCheckSimpleReportsJSONTagName(t *testing.T) {
	err := CheckSimple(model.TLS{CertFilePath: "", KeyFilePath: ""})
	require.Error(t, err)

	asErr := NewErrorFromError(err)
	assert.Equal(t, "validation_error", asErr.Title)

	details, ok := asErr.Err.([]map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, details)
	assert.Equal(t, "cert_file_path", details[0]["namespace"])
}

func TestCheckSimpleIdentityCfg(t *testing.T) {
	require.NoError(t, CheckSimple(model.Identity{APIServer: model.APIServer{Addr: ":8080"}}))
	require.Error(t, CheckSimple(model.Identity{}))
}
