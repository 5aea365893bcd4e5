package solutions

// builtinCatalog returns the default solution catalog. Entries cover the
// requirement shapes that most often tempt people into reinventing wheels.
func builtinCatalog() []knownSolution {
	return []knownSolution{
		{
			solution: Solution{
				Name:         "gopkg.in/yaml.v3",
				Description:  "YAML encoding and decoding for Go",
				Installation: "go get gopkg.in/yaml.v3",
				URL:          "https://pkg.go.dev/gopkg.in/yaml.v3",
				Pros:         []string{"battle-tested", "struct tags", "streaming decoder"},
			},
			keywords: []string{"yaml", "parse yaml", "yaml config"},
			example: `var cfg Config
if err := yaml.Unmarshal(data, &cfg); err != nil {
	return err
}`,
		},
		{
			solution: Solution{
				Name:         "github.com/spf13/cobra",
				Description:  "CLI framework with subcommands, flags, and help generation",
				Installation: "go get github.com/spf13/cobra",
				URL:          "https://cobra.dev",
				Pros:         []string{"subcommand tree", "POSIX flags", "shell completions"},
			},
			keywords: []string{"cli", "command line", "subcommand", "flags"},
			example: `rootCmd := &cobra.Command{Use: "app"}
rootCmd.AddCommand(serveCmd)
rootCmd.Execute()`,
		},
		{
			solution: Solution{
				Name:         "github.com/google/uuid",
				Description:  "RFC 4122 UUID generation and parsing",
				Installation: "go get github.com/google/uuid",
				URL:          "https://pkg.go.dev/github.com/google/uuid",
				Pros:         []string{"standard UUID versions", "zero dependencies"},
			},
			keywords: []string{"uuid", "unique id", "identifier generation"},
			example:  `id := uuid.New().String()`,
		},
		{
			solution: Solution{
				Name:         "github.com/fsnotify/fsnotify",
				Description:  "Cross-platform filesystem notifications",
				Installation: "go get github.com/fsnotify/fsnotify",
				URL:          "https://pkg.go.dev/github.com/fsnotify/fsnotify",
				Pros:         []string{"inotify/kqueue/ReadDirectoryChanges", "simple event API"},
			},
			keywords: []string{"watch", "file change", "filesystem events", "monitor directory"},
			example: `watcher, _ := fsnotify.NewWatcher()
watcher.Add(dir)
for ev := range watcher.Events { handle(ev) }`,
		},
		{
			solution: Solution{
				Name:         "go.uber.org/zap",
				Description:  "Fast structured leveled logging",
				Installation: "go get go.uber.org/zap",
				URL:          "https://pkg.go.dev/go.uber.org/zap",
				Pros:         []string{"structured fields", "very low allocation", "production config"},
			},
			keywords: []string{"logging", "structured log", "logger"},
			example: `logger, _ := zap.NewProduction()
logger.Info("started", zap.String("addr", addr))`,
		},
		{
			solution: Solution{
				Name:         "golang.org/x/sync/errgroup",
				Description:  "Goroutine groups with error propagation and limits",
				Installation: "go get golang.org/x/sync",
				URL:          "https://pkg.go.dev/golang.org/x/sync/errgroup",
				Pros:         []string{"bounded parallelism", "first-error cancellation"},
			},
			keywords: []string{"worker pool", "parallel", "concurrent tasks", "goroutine group"},
			example: `g, ctx := errgroup.WithContext(ctx)
g.SetLimit(4)
for _, t := range tasks { t := t; g.Go(func() error { return run(ctx, t) }) }
return g.Wait()`,
		},
		{
			solution: Solution{
				Name:         "github.com/mattn/go-sqlite3",
				Description:  "SQLite driver for database/sql",
				Installation: "go get github.com/mattn/go-sqlite3",
				URL:          "https://pkg.go.dev/github.com/mattn/go-sqlite3",
				Pros:         []string{"full SQLite feature set", "database/sql compatible"},
			},
			keywords: []string{"sqlite", "embedded database", "local database"},
			example: `db, err := sql.Open("sqlite3", path)
if err != nil { return err }`,
		},
	}
}
