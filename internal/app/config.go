package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annothub/annothub-backend/internal/platform/envutil"
)

type Config struct {
	Port            string
	AnnotationsRoot string
	TmpDir          string
	AdminAuthKey    string
	CORSOrigins     []string

	CatalogURLs    []string
	CatalogTimeout time.Duration

	DownloadTimeout   time.Duration
	ExternalTimeout   time.Duration
	RateLimitBurst    int
	RateLimitPause    time.Duration
	ReportConcurrency int

	NCBIBaseURL       string
	ENABrowserBaseURL string
	ENAPortalBaseURL  string
	AssemblyBaseURL   string
	ReportBaseURL     string

	DownloadsCacheDir string
	DownloadsCacheTTL time.Duration
}

// catalogFile is the YAML shape of CATALOG_SOURCES_FILE.
type catalogFile struct {
	Sources []string `yaml:"sources"`
}

// LoadConfig reads the environment. ANNOTATIONS_ROOT is the only
// required variable; everything else has a default.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		AnnotationsRoot: envutil.String("ANNOTATIONS_ROOT", ""),
		TmpDir:          envutil.String("PIPELINE_TMP_DIR", ""),
		AdminAuthKey:    envutil.String("ADMIN_AUTH_KEY", ""),
		CORSOrigins:     envutil.List("CORS_ORIGINS"),

		CatalogURLs:    envutil.List("CATALOG_URLS"),
		CatalogTimeout: envutil.Duration("CATALOG_TIMEOUT", 5*time.Minute),

		DownloadTimeout:   envutil.Duration("DOWNLOAD_TIMEOUT", 30*time.Minute),
		ExternalTimeout:   envutil.Duration("EXTERNAL_TIMEOUT", 30*time.Second),
		RateLimitBurst:    envutil.Int("RATE_LIMIT_BURST", 10),
		RateLimitPause:    envutil.Duration("RATE_LIMIT_PAUSE", 2*time.Second),
		ReportConcurrency: envutil.Int("REPORT_CONCURRENCY", 20),

		NCBIBaseURL:       envutil.String("NCBI_BASE_URL", ""),
		ENABrowserBaseURL: envutil.String("ENA_BROWSER_BASE_URL", ""),
		ENAPortalBaseURL:  envutil.String("ENA_PORTAL_BASE_URL", ""),
		AssemblyBaseURL:   envutil.String("ASSEMBLY_BASE_URL", ""),
		ReportBaseURL:     envutil.String("ASSEMBLY_REPORT_BASE_URL", ""),

		DownloadsCacheDir: envutil.String("DOWNLOADS_CACHE_DIR", ""),
		DownloadsCacheTTL: envutil.Duration("DOWNLOADS_CACHE_TTL", time.Hour),
	}
	if cfg.AnnotationsRoot == "" {
		return cfg, fmt.Errorf("ANNOTATIONS_ROOT is required")
	}

	if path := envutil.String("CATALOG_SOURCES_FILE", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read catalog sources file: %w", err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return cfg, fmt.Errorf("parse catalog sources file: %w", err)
		}
		cfg.CatalogURLs = append(cfg.CatalogURLs, f.Sources...)
	}
	return cfg, nil
}
