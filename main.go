// strkit: string catalog localization kit. Reports coverage of Xcode
// .xcstrings catalogs and fills missing translations.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minios-linux/strkit/analyze"
	"github.com/minios-linux/strkit/catalog"
	"github.com/minios-linux/strkit/config"
	"github.com/minios-linux/strkit/i18n"
	"github.com/minios-linux/strkit/langmeta"
	"github.com/minios-linux/strkit/lockfile"
	"github.com/minios-linux/strkit/logging"
	"github.com/minios-linux/strkit/report"
	"github.com/minios-linux/strkit/settings"
	"github.com/minios-linux/strkit/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir     string
	catalogPath string
	verbose     bool
	logPath     string

	logger = logging.New(os.Stderr, false)
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strkit",
		Short: "String catalog localization kit",
		Long: `strkit: localization kit for Xcode string catalogs (.xcstrings).

Reports per-language translation coverage and fills missing translations.
Pattern-only strings (symbols, numbers, URLs, bare format strings) are copied
as-is; text is translated in batches with its format specifiers protected.

Commands:
  status      Show translation coverage per language
  translate   Fill missing translations
  export      Write missing keys per language as JSON
  auth        Manage provider API keys

Translation providers:
  google-translate  Google Translate (default, no key)
  google            Google AI (Gemini), API key
  groq              Groq, API key
  ollama            Ollama local server
  custom-openai     Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			i18n.Init("")
			logger = logging.New(os.Stderr, verbose)
		},
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVarP(&catalogPath, "file", "f", "", "Path to the .xcstrings catalog (auto-detected by default)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed output")
	root.PersistentFlags().StringVar(&logPath, "log", "", "Write a log file to this path")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newExportCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("strkit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Session: project + catalog + lock file
// ---------------------------------------------------------------------------

type session struct {
	proj        *config.Project
	catalogPath string
	cat         *catalog.File
	lock        *lockfile.LockFile
	sourceLang  string
	languages   []string
}

// openSession resolves the project, loads the catalog and lock file, and
// picks the target languages: --lang, then the configuration, minus the
// source language.
func openSession(langFlag string) (*session, error) {
	proj, err := config.Detect(rootDir)
	if err != nil {
		return nil, err
	}

	path, err := proj.FindCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Catalog: %s", path)

	cat, err := catalog.ParseFile(path)
	if err != nil {
		return nil, err
	}

	lock, err := lockfile.Load(proj.Root)
	if err != nil {
		return nil, err
	}

	s := &session{
		proj:        proj,
		catalogPath: path,
		cat:         cat,
		lock:        lock,
		sourceLang:  sourceLanguage(proj, cat),
	}
	// Source values are read from the configured language, and a saved
	// catalog declares it.
	if cat.SourceLanguage != s.sourceLang {
		logger.Warn(i18n.T("source_lang %s overrides the catalog's source language %s"), s.sourceLang, cat.SourceLanguage)
		cat.SourceLanguage = s.sourceLang
	}

	langs := proj.Languages
	if langFlag != "" {
		langs = config.SplitLanguages(langFlag)
	}
	s.languages = filterOutLang(langs, s.sourceLang)
	if len(s.languages) == 0 {
		return nil, errors.New(i18n.T("no target languages selected"))
	}
	return s, nil
}

// sourceLanguage prefers an explicit source_lang in .strkit.yaml, then the
// catalog's own sourceLanguage.
func sourceLanguage(proj *config.Project, cat *catalog.File) string {
	if proj.ConfigFile != "" {
		if f, err := config.LoadFile(proj.Root); err == nil && f != nil && f.SourceLang != "" {
			return f.SourceLang
		}
	}
	if cat.SourceLanguage != "" {
		return cat.SourceLanguage
	}
	return proj.SourceLang
}

func filterOutLang(langs []string, lang string) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// outstandingFallbacks returns the fallback keys of lang that still hold the
// verbatim source value.
func outstandingFallbacks(lock *lockfile.LockFile, cat *catalog.File, lang string) []string {
	var out []string
	for _, key := range lock.FallbackKeys(lang) {
		if v, ok := cat.Value(key, lang); ok && v == cat.SourceValue(key) {
			out = append(out, key)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var langs string

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"analyze"},
		Short:   "Show translation coverage per language",
		Long: `Show per-language translation coverage of the catalog.

With --verbose, lists up to 20 missing keys per language, marking patterns
that will be copied as-is and texts that need translation. Keys whose source
text changed since strkit translated them, and keys that still hold a
fallback copy of the source text, are counted from .strkit.lock.
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.OutOrStdout(), langs)
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "", "Languages to report (comma-separated, default: configured)")
	return cmd
}

func runStatus(w io.Writer, langs string) error {
	s, err := openSession(langs)
	if err != nil {
		return err
	}

	logger.Info(i18n.T("Catalog: %s (%d keys, source: %s)"), relPath(s.proj.Root, s.catalogPath), len(s.cat.Keys()), s.sourceLang)

	stats := analyze.Analyze(s.cat, s.languages)
	opts := report.AnalysisOptions{
		Verbose:   verbose,
		Stale:     make(map[string][]string),
		Fallbacks: make(map[string][]string),
	}
	for _, lang := range s.languages {
		opts.Stale[lang] = s.lock.StaleKeys(lang, s.cat)
		opts.Fallbacks[lang] = outstandingFallbacks(s.lock, s.cat, lang)
	}

	report.Analysis(w, s.cat, s.languages, stats, opts)
	logger.Debug("Lock file: %s", s.lock.Summary())
	return nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	langs                            string
	provider, apiKey, model, baseURL string
	batchSize                        int
	dryRun                           bool
	timeout                          time.Duration
	proxy                            string
	maxRetries                       int
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Fill missing translations",
		Long: `Fill the missing translations of the catalog.

Pattern-only strings are copied as-is. Text is sent in batches to the
translation provider; whatever the provider cannot translate is filled with
a copy of the source text and reported as an error. The catalog and
.strkit.lock are saved at the end, also after Ctrl-C.

Examples:
  # Translate the configured languages with Google Translate
  strkit translate

  # Translate German and Italian with Groq
  strkit translate --provider groq --lang de,it

  # Show what would be done without writing anything
  strkit translate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTranslate(ctx, cmd.OutOrStdout(), a)
		},
	}

	cmd.Flags().StringVar(&a.langs, "lang", "", "Languages to translate (comma-separated, default: configured)")
	cmd.Flags().BoolVarP(&a.dryRun, "dry-run", "n", false, "Show what would be translated without writing files")
	cmd.Flags().IntVar(&a.batchSize, "batch-size", 0, "Texts per translation request (default: configured or 50)")

	cmd.Flags().StringVar(&a.provider, "provider", "", "Translation provider: google-translate, google, groq, ollama, custom-openai")
	cmd.Flags().StringVar(&a.model, "model", "", "Model name for LLM providers")
	cmd.Flags().StringVar(&a.apiKey, "api-key", "", "API key (or "+settings.EnvAPIKey+" env var)")
	cmd.Flags().StringVar(&a.baseURL, "base-url", "", "Custom API base URL")

	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().StringVar(&a.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&a.maxRetries, "max-retries", 3, "Maximum retries on rate limits and server errors")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"google-translate\tGoogle Translate (no key)",
			"google\tGoogle AI (Gemini), API key required",
			"groq\tGroq, API key required",
			"ollama\tOllama local server",
			"custom-openai\tCustom OpenAI-compatible endpoint",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runTranslate(ctx context.Context, w io.Writer, a translateArgs) error {
	s, err := openSession(a.langs)
	if err != nil {
		return err
	}

	path := logPath
	if path == "" && !a.dryRun {
		path = logging.TimestampedPath(s.proj.Root, time.Now())
	}
	if path != "" {
		if err := logger.OpenFile(path); err != nil {
			return err
		}
		defer logger.Close()
		translate.UseLogger(logger.Subsystem("TRNS"))
		defer translate.DisableLog()
		logger.Debug("Log file: %s", path)
	}

	prov, err := resolveProvider(s.proj, a)
	if err != nil {
		return err
	}
	factory, err := translate.NewFactory(prov)
	if err != nil {
		return err
	}

	batchSize := s.proj.BatchSize
	if a.batchSize > 0 {
		batchSize = a.batchSize
	}

	if a.dryRun {
		logger.Warn(i18n.T("Dry run: no files will be written"))
	}
	logger.Info(i18n.T("Translating %s with %s"), languageLabels(s.languages), prov.Name)

	progress := report.NewProgress(os.Stderr, report.IsTerminal(os.Stderr) && !verbose, logger.Info)
	defer progress.Close()

	opts := translate.Options{
		SourceLanguage:    s.sourceLang,
		Languages:         s.languages,
		BatchSize:         batchSize,
		LanguageOverrides: s.proj.LanguageOverrides,
		DryRun:            a.dryRun,
		Verbose:           verbose,
		OnProgress:        progress.Update,
		OnApply: func(lang, key, source string, outcome translate.Outcome) {
			s.lock.Record(lang, key, source, outcome == translate.OutcomeFallback)
		},
		OnLog:   logger.Info,
		OnWarn:  logger.Warn,
		OnError: logger.Error,
		OnDebug: logger.Debug,
	}

	stats, runErr := translate.New(opts, factory).Run(ctx, s.cat)
	progress.Close()
	if runErr != nil {
		logger.Warn(i18n.T("Interrupted, saving progress"))
	}

	report.Summary(w, s.languages, stats)

	if a.dryRun {
		return runErr
	}

	if err := s.cat.WriteFile(s.catalogPath); err != nil {
		return err
	}
	s.lock.Clean(s.cat.Keys())
	if err := s.lock.Save(); err != nil {
		return err
	}
	logger.Success(i18n.T("Saved %s"), relPath(s.proj.Root, s.catalogPath))

	if errs := totalErrors(stats); errs > 0 {
		logger.Warn(i18n.N("%d string was copied untranslated; run 'strkit status' to review",
			"%d strings were copied untranslated; run 'strkit status' to review", errs), errs)
	}
	if runErr != nil {
		return fmt.Errorf("translation interrupted: %w", runErr)
	}
	return nil
}

// resolveProvider merges flags, .strkit.yaml and stored credentials on top
// of the provider defaults.
func resolveProvider(proj *config.Project, a translateArgs) (translate.Provider, error) {
	id := firstNonEmpty(a.provider, proj.Provider, translate.DefaultProviderID)
	prov, ok := translate.DefaultProviders()[strings.ToLower(id)]
	if !ok {
		return translate.Provider{}, fmt.Errorf("unknown provider %q (available: %s)", id, strings.Join(providerIDs(), ", "))
	}

	prov.BaseURL = firstNonEmpty(a.baseURL, proj.BaseURL, settings.GetBaseURL(prov.ID), prov.BaseURL)
	prov.Model = firstNonEmpty(a.model, proj.Model, prov.Model)
	if a.timeout > 0 {
		prov.Timeout = a.timeout
	} else if proj.Timeout > 0 {
		prov.Timeout = proj.Timeout
	}
	prov.Proxy = a.proxy
	prov.MaxRetries = a.maxRetries

	if prov.ID != translate.ProviderGoogleTranslate {
		prov.APIKey = settings.ResolveAPIKey(prov.ID, a.apiKey)
	}
	if prov.NeedsAPIKey() && prov.APIKey == "" {
		return translate.Provider{}, fmt.Errorf("provider '%s' requires an API key\n\n"+
			"Option 1: Store your API key:\n"+
			"  strkit auth login --provider %s\n\n"+
			"Option 2: Pass key directly:\n"+
			"  --api-key YOUR_KEY or export %s=YOUR_KEY",
			prov.ID, prov.ID, settings.EnvAPIKey)
	}
	return prov, nil
}

func providerIDs() []string {
	var ids []string
	for id := range translate.DefaultProviders() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func totalErrors(stats map[string]*analyze.Stats) int {
	n := 0
	for _, st := range stats {
		n += st.Errors
	}
	return n
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var langs string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write missing keys per language as JSON",
		Long: `Write coverage and the missing keys of every language to a JSON file,
with each key's source value and whether it is a pattern or carries format
specifiers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(langs)
			if err != nil {
				return err
			}
			if err := analyze.WriteExport(args[0], s.cat, s.languages); err != nil {
				return err
			}
			logger.Success(i18n.T("Exported missing keys to %s"), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "", "Languages to export (comma-separated, default: configured)")
	return cmd
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

// keyProviders are the providers whose credentials can be stored.
var keyProviders = []struct {
	id      string
	name    string
	helpURL string
}{
	{translate.ProviderGoogle, "Google AI Studio", "https://aistudio.google.com/apikey"},
	{translate.ProviderGroq, "Groq Cloud", "https://console.groq.com/keys"},
	{translate.ProviderCustomOpenAI, "Custom OpenAI", ""},
}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage API keys of the translation providers.

Keys are stored in $XDG_DATA_HOME/strkit/auth.json with 0600 permissions.
The --api-key flag and the ` + settings.EnvAPIKey + ` environment variable take
precedence over stored keys.

Examples:
  strkit auth login --provider groq      Store a Groq API key
  strkit auth logout --provider groq     Remove the Groq API key
  strkit auth logout                     Remove all credentials
  strkit auth list                       Show stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewScanner(cmd.InOrStdin())
			if provider == "" {
				fmt.Fprintln(os.Stderr, i18n.T("Select provider:"))
				for i, p := range keyProviders {
					fmt.Fprintf(os.Stderr, "  %d. %-14s %s\n", i+1, p.id, p.name)
				}
				fmt.Fprint(os.Stderr, i18n.T("Enter choice (number or name): "))
				if !in.Scan() {
					return errors.New(i18n.T("no input received"))
				}
				provider = pickProvider(strings.TrimSpace(in.Text()))
				if provider == "" {
					return errors.New("invalid choice, use: strkit auth login --provider PROVIDER")
				}
			}
			return authLogin(in, provider)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to authenticate")
	return cmd
}

func pickProvider(choice string) string {
	for i, p := range keyProviders {
		if choice == fmt.Sprint(i+1) || choice == p.id {
			return p.id
		}
	}
	return ""
}

func authLogin(in *bufio.Scanner, providerID string) error {
	if pickProvider(providerID) == "" {
		return fmt.Errorf("provider %q does not use an API key", providerID)
	}

	existing := settings.Load()[providerID]

	var baseURL string
	if providerID == translate.ProviderCustomOpenAI {
		prompt := i18n.T("Enter endpoint URL (e.g., https://api.example.com/v1): ")
		if existing != nil && existing.BaseURL != "" {
			prompt = i18n.Tf("Endpoint URL [%s]: ", existing.BaseURL)
		}
		fmt.Fprint(os.Stderr, prompt)
		if !in.Scan() {
			return errors.New(i18n.T("no input received"))
		}
		baseURL = strings.TrimSpace(in.Text())
		if baseURL == "" && existing != nil {
			baseURL = existing.BaseURL
		}
		if baseURL == "" {
			return errors.New(i18n.T("endpoint URL is required"))
		}
	}

	for _, p := range keyProviders {
		if p.id == providerID && p.helpURL != "" {
			fmt.Fprintf(os.Stderr, "%s\n", i18n.Tf("Get your API key from: %s", p.helpURL))
		}
	}
	if existing != nil && existing.Key != "" {
		fmt.Fprint(os.Stderr, i18n.Tf("API key [%s]: ", settings.MaskKey(existing.Key)))
	} else {
		fmt.Fprint(os.Stderr, i18n.T("Enter API key: "))
	}
	if !in.Scan() {
		return errors.New(i18n.T("no input received"))
	}
	key := strings.TrimSpace(in.Text())
	if key == "" && existing != nil {
		key = existing.Key
	}
	if key == "" && providerID != translate.ProviderCustomOpenAI {
		return errors.New(i18n.T("no API key provided"))
	}

	if err := settings.SetAPIKey(providerID, key, baseURL); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}
	logger.Success(i18n.T("Credentials for %s saved"), providerID)
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logger.Success(i18n.T("All stored credentials removed"))
				return nil
			}
			if err := settings.Remove(provider); err != nil {
				return fmt.Errorf("removing %s credentials: %w", provider, err)
			}
			logger.Success(i18n.T("Credentials for %s removed"), provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials",
		Run: func(cmd *cobra.Command, args []string) {
			listCredentials(cmd.OutOrStdout())
		},
	}
}

func listCredentials(w io.Writer) {
	store := settings.Load()
	fmt.Fprintf(w, "%s\n", i18n.T("Stored Credentials"))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, p := range keyProviders {
		info := store[p.id]
		switch {
		case info == nil:
			fmt.Fprintf(w, "  %-14s %s\n", p.id, i18n.T("not configured"))
		case info.Key == "":
			fmt.Fprintf(w, "  %-14s %s (%s)\n", p.id, i18n.T("configured"), i18n.T("no key"))
		default:
			fmt.Fprintf(w, "  %-14s %s (%s)\n", p.id, i18n.T("configured"), settings.MaskKey(info.Key))
		}
		if info != nil && info.BaseURL != "" {
			fmt.Fprintf(w, "  %14s endpoint: %s\n", "", info.BaseURL)
		}
	}

	if env := os.Getenv(settings.EnvAPIKey); env != "" {
		fmt.Fprintf(w, "\n  %s: %s (%s)\n", settings.EnvAPIKey, settings.MaskKey(env), i18n.T("overrides stored keys"))
	} else {
		fmt.Fprintf(w, "\n  %s: %s\n", settings.EnvAPIKey, i18n.T("not set"))
	}
	if p := settings.FilePath(); p != "" {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// languageLabels renders "🇩🇪 Deutsch (de), ..." for log lines.
func languageLabels(langs []string) string {
	labels := make([]string, len(langs))
	for i, l := range langs {
		labels[i] = langmeta.Resolve(l).Label()
	}
	return strings.Join(labels, ", ")
}
