package helpers

import (
	"os"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"gopkg.in/yaml.v3"
)

// ReadYamlConfigFile parses the config file and sets the working directory
// used to resolve relative paths.
func ReadYamlConfigFile(filename string) (*config.AppConfig, error) {
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	appCnf := new(config.AppConfig)
	err = yaml.Unmarshal(yamlFile, appCnf)
	if err != nil {
		return nil, err
	}

	// get current working dir
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	appCnf.RootWorkingDir = wd

	return appCnf, nil
}
