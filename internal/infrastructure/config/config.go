package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Environment variable names
const (
	EnvConfigFile     = "TOURASSIST_CONFIG"
	EnvHTTPPort       = "TOURASSIST_HTTP_PORT"
	EnvDataDir        = "TOURASSIST_DATA_DIR"
	EnvDBPath         = "TOURASSIST_DB_PATH"
	EnvQdrantURL      = "QDRANT_URL"
	EnvQdrantGRPCPort = "QDRANT_GRPC_PORT"
	EnvQdrantAPIKey   = "QDRANT_API_KEY"
	EnvCollection     = "QDRANT_COLLECTION"
	EnvVectorBackend  = "TOURASSIST_VECTOR_BACKEND"
	EnvBaseURL        = "OPENAI_BASE_URL"
	EnvAPIKey         = "OPENAI_API_KEY"
	EnvChatModel      = "OPENAI_CHAT_MODEL"
	EnvEmbedModel     = "OPENAI_EMBED_MODEL"
	EnvEmbedDims      = "TOURASSIST_EMBED_DIMS"
	EnvProviderRPS    = "TOURASSIST_PROVIDER_RPS"
	EnvMaxChunkChars  = "TOURASSIST_MAX_CHUNK_CHARS"
	EnvTopK           = "TOURASSIST_TOP_K"
	EnvMaxFileSizeMB  = "TOURASSIST_MAX_FILE_SIZE_MB"
	EnvEvalTimeoutS   = "TOURASSIST_EVAL_TIMEOUT_S"
	EnvSessionTTL     = "TOURASSIST_SESSION_TTL"
	EnvInboxDir       = "TOURASSIST_INBOX_DIR"
	EnvMDNSEnabled    = "TOURASSIST_MDNS_ENABLED"
)

// Vector backends
const (
	VectorBackendQdrant = "qdrant"
	VectorBackendMemory = "memory"
)

const defaultEmbedDims = 384

var embedModelDims = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config is the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Vector    VectorConfig
	Provider  ProviderConfig
	RAG       RAGConfig
	Chat      ChatConfig
	Eval      EvalConfig
	Inbox     InboxConfig
	Discovery DiscoveryConfig
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	HTTPPort string // ":8000", also used for the single-instance lock
}

// DatabaseConfig sqlite settings
type DatabaseConfig struct {
	DataDir string
	Path    string
}

// VectorConfig selects and addresses the vector index backend
type VectorConfig struct {
	Backend    string
	QdrantURL  string
	Host       string
	GRPCPort   int
	UseTLS     bool
	APIKey     string
	Collection string
}

// ProviderConfig addresses the OpenAI-compatible embedding and chat provider
type ProviderConfig struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	EmbedModel string
	EmbedDims  int
	// RPS caps outbound provider requests per second
	RPS     float64
	Timeout time.Duration
}

// RAGConfig ingestion and retrieval settings
type RAGConfig struct {
	MaxChunkChars int
	TopK          int
	MaxFileSizeMB int
}

// MaxFileSizeBytes returns the upload cap in bytes
func (c *RAGConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// ChatConfig session memory settings
type ChatConfig struct {
	MaxTurns   int
	SessionTTL time.Duration // 0 keeps sessions for the process lifetime
}

// EvalConfig eval harness settings
type EvalConfig struct {
	Timeout time.Duration
}

// InboxConfig configures the watched drop folder; empty Dir disables it
type InboxConfig struct {
	Dir      string
	Debounce time.Duration
}

// DiscoveryConfig configures mDNS advertisement
type DiscoveryConfig struct {
	MDNSEnabled bool
}

// NewConfig loads .env, the optional YAML file named by TOURASSIST_CONFIG and
// the environment, in increasing precedence
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(os.Getenv(EnvConfigFile))
}

// Load builds a Config from an optional YAML file plus the environment.
// YAML keys are the lowercased environment variable names.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Empty variables are skipped so they do not mask values from the file
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	r := reader{k: k}

	dataDir := r.str(EnvDataDir, "./data")
	embedModel := r.str(EnvEmbedModel, "text-embedding-3-small")
	qdrantURL := r.str(EnvQdrantURL, "http://localhost:6333")

	cfg := &Config{
		Server: ServerConfig{
			HTTPPort: ":" + strings.TrimPrefix(r.str(EnvHTTPPort, "8000"), ":"),
		},
		Database: DatabaseConfig{
			DataDir: dataDir,
			Path:    r.str(EnvDBPath, filepath.Join(dataDir, "tourassist.db")),
		},
		Vector: VectorConfig{
			Backend:    strings.ToLower(r.str(EnvVectorBackend, VectorBackendQdrant)),
			QdrantURL:  qdrantURL,
			GRPCPort:   r.int(EnvQdrantGRPCPort, 6334),
			APIKey:     r.str(EnvQdrantAPIKey, ""),
			Collection: r.str(EnvCollection, "tourassist_chunks"),
		},
		Provider: ProviderConfig{
			BaseURL:    strings.TrimSuffix(r.str(EnvBaseURL, "https://api.openai.com/v1"), "/"),
			APIKey:     r.str(EnvAPIKey, ""),
			ChatModel:  r.str(EnvChatModel, "gpt-4o-mini"),
			EmbedModel: embedModel,
			EmbedDims:  r.int(EnvEmbedDims, ResolveEmbedDims(embedModel)),
			RPS:        r.float(EnvProviderRPS, 10),
			Timeout:    20 * time.Second,
		},
		RAG: RAGConfig{
			MaxChunkChars: r.int(EnvMaxChunkChars, 800),
			TopK:          r.int(EnvTopK, 4),
			MaxFileSizeMB: r.int(EnvMaxFileSizeMB, 10),
		},
		Chat: ChatConfig{
			MaxTurns:   8,
			SessionTTL: r.duration(EnvSessionTTL, 0),
		},
		Eval: EvalConfig{
			Timeout: time.Duration(r.int(EnvEvalTimeoutS, 20)) * time.Second,
		},
		Inbox: InboxConfig{
			Dir:      r.str(EnvInboxDir, ""),
			Debounce: 500 * time.Millisecond,
		},
		Discovery: DiscoveryConfig{
			MDNSEnabled: r.bool(EnvMDNSEnabled, false),
		},
	}

	if r.err != nil {
		return nil, r.err
	}

	u, err := url.Parse(qdrantURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid %s %q", EnvQdrantURL, qdrantURL)
	}
	cfg.Vector.Host = u.Hostname()
	cfg.Vector.UseTLS = u.Scheme == "https"

	for _, v := range []struct {
		env   string
		value int
	}{
		{EnvEmbedDims, cfg.Provider.EmbedDims},
		{EnvTopK, cfg.RAG.TopK},
		{EnvMaxChunkChars, cfg.RAG.MaxChunkChars},
		{EnvMaxFileSizeMB, cfg.RAG.MaxFileSizeMB},
	} {
		if v.value <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d", v.env, v.value)
		}
	}
	if cfg.Vector.Backend != VectorBackendQdrant && cfg.Vector.Backend != VectorBackendMemory {
		return nil, fmt.Errorf("unknown %s %q", EnvVectorBackend, cfg.Vector.Backend)
	}

	return cfg, nil
}

// ResolveEmbedDims maps a known embedding model to its vector size
func ResolveEmbedDims(model string) int {
	if dims, ok := embedModelDims[model]; ok {
		return dims
	}
	return defaultEmbedDims
}

// reader reads typed values from koanf, keeping the first parse error
type reader struct {
	k   *koanf.Koanf
	err error
}

func (r *reader) raw(envName string) string {
	return strings.TrimSpace(r.k.String(strings.ToLower(envName)))
}

func (r *reader) str(envName, def string) string {
	if v := r.raw(envName); v != "" {
		return v
	}
	return def
}

func (r *reader) int(envName string, def int) int {
	v := r.raw(envName)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(envName, v, err)
		return def
	}
	return n
}

func (r *reader) float(envName string, def float64) float64 {
	v := r.raw(envName)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(envName, v, err)
		return def
	}
	return f
}

func (r *reader) bool(envName string, def bool) bool {
	v := r.raw(envName)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(envName, v, err)
		return def
	}
	return b
}

func (r *reader) duration(envName string, def time.Duration) time.Duration {
	v := r.raw(envName)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(envName, v, err)
		return def
	}
	return d
}

func (r *reader) fail(envName, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", envName, value, err)
	}
}

// NewDatabaseConfig provides the database section
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig provides the server section
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewVectorConfig provides the vector index section
func NewVectorConfig(cfg *Config) *VectorConfig {
	return &cfg.Vector
}

// NewProviderConfig provides the model provider section
func NewProviderConfig(cfg *Config) *ProviderConfig {
	return &cfg.Provider
}

// NewRAGConfig provides the ingestion and retrieval section
func NewRAGConfig(cfg *Config) *RAGConfig {
	return &cfg.RAG
}

// NewChatConfig provides the session memory section
func NewChatConfig(cfg *Config) *ChatConfig {
	return &cfg.Chat
}

// NewEvalConfig provides the eval section
func NewEvalConfig(cfg *Config) *EvalConfig {
	return &cfg.Eval
}

// NewInboxConfig provides the inbox watcher section
func NewInboxConfig(cfg *Config) *InboxConfig {
	return &cfg.Inbox
}

// NewDiscoveryConfig provides the mDNS section
func NewDiscoveryConfig(cfg *Config) *DiscoveryConfig {
	return &cfg.Discovery
}
