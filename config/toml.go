package config

import (
	"bytes"
	"text/template"

	cmtconfig "github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/libs/os"
)

// DefaultDirPerm is the default permissions used when creating directories.
const DefaultDirPerm = 0o700

var appTemplate *template.Template

func init() {
	var err error
	if appTemplate, err = template.New("appConfigSection").Parse(appConfigTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFile writes the CometBFT config followed by the app section
// to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) {
	cmtconfig.WriteConfigFile(configFilePath, config.Config)

	var buffer bytes.Buffer
	if err := appTemplate.Execute(&buffer, config); err != nil {
		panic(err)
	}
	f := os.MustReadFile(configFilePath)
	f = append(f, buffer.Bytes()...)
	os.MustWriteFile(configFilePath, f, 0o644)
}

const appConfigTemplate = `
#######################################################
###          Application Configuration              ###
#######################################################
[app]

# Address for the indexer read API to listen on.
# Leave empty to disable the indexer on this node.
indexer_listen = "{{ .App.IndexerListen }}"

# Path of the indexer sqlite database.
indexer_db = "{{ .App.IndexerDB }}"
`
