package config

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultMaster runs the session in process with one worker per CPU
	DefaultMaster = "local[*]"
	// DefaultAppName is the application name reported in the session conf
	DefaultAppName = "hepsmoke"
	// DefaultJar is the remote filesystem jar expected in the working directory
	DefaultJar = "hadoop-xrootd-1.0.4-jar-with-dependencies.jar"
	// DefaultPackages is the coordinate of the root format connector
	DefaultPackages = "edu.vanderbilt.accre:laurelin:1.0.2"
	// DefaultFormat is the format name of the root connector
	DefaultFormat = "root"
	// DefaultTree is the tree counted by the smoke test
	DefaultTree = "Events"
	// DefaultLocator is the public CMS open data file read by the smoke test
	DefaultLocator = "root://eospublic.cern.ch//eos/root-eos/cms_opendata_2012_nanoaod/Run2012B_DoubleMuParked.root"

	localstackEndpoint = "https://127.0.0.1:4566"
)

// Config represents the configuration file specified by the user
type Config struct {
	Master         string            `yaml:"master"`
	AppName        string            `yaml:"appName"`
	Jar            string            `yaml:"jar"`
	Packages       string            `yaml:"packages"`
	Format         string            `yaml:"format"`
	Tree           string            `yaml:"tree"`
	Locators       []string          `yaml:"locators"`
	Conf           map[string]string `yaml:"conf"`
	// EngineLogLevel, when set, replaces LogLevel once the session exists
	EngineLogLevel string            `yaml:"engineLogLevel"`
	LogLevel       int               `yaml:"logLevel"`
	Region         string            `yaml:"region"`
	Local          bool              `yaml:"local"`
	Endpoint       string            `yaml:"endpoint"`
}

// Default returns the configuration of the documented smoke test
func Default() *Config {
	return &Config{
		Master:   DefaultMaster,
		AppName:  DefaultAppName,
		Jar:      DefaultJar,
		Packages: DefaultPackages,
		Format:   DefaultFormat,
		Tree:     DefaultTree,
		Locators: []string{DefaultLocator},
		LogLevel: 1,
		Region:   "eu-west-2",
	}
}

// ReadLocalConfigFile reads the config file from the driver's file system.
// Note that the path can be absolute or relative. Values present in the
// file override the defaults; a missing file yields the defaults.
func ReadLocalConfigFile(path string) (*Config, error) {
	conf := Default()

	confFile, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return conf, nil
		}
		return nil, err
	}

	err = yaml.Unmarshal(confFile, conf)
	if err != nil {
		return nil, err
	}

	return conf, nil
}

// InitCfg loads the aws configuration from the environment and shared
// config files for the given region
func InitCfg(region string) (aws.Config, error) {
	return config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion(region),
	)
}

// InitLocalCfg points the aws clients to localstack, or to endpoint when set
func InitLocalCfg(endpoint string) (aws.Config, error) {
	if endpoint == "" {
		endpoint = localstackEndpoint
	}

	localstackEndpointResolver := aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               endpoint,
			HostnameImmutable: true,
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion("us-east-1"),
		config.WithEndpointResolver(localstackEndpointResolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummyKey", "dummyKey", "")),
	)
	if err != nil {
		return aws.Config{}, err
	}

	// FIXME: localstack serves a self-signed certificate
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	cfg.HTTPClient = &http.Client{Transport: tr}

	return cfg, nil
}
