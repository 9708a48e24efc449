package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"mapper-engine/internal/common"
	"mapper-engine/internal/diagnostic"
	"mapper-engine/internal/draft"
	"mapper-engine/internal/host"
	"mapper-engine/internal/mapping"
	"mapper-engine/internal/match"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
	"mapper-engine/internal/session"
)

func (a *app) flattenCmd(args []string) int {
	fs := flag.NewFlagSet("flatten", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "schema tree (YAML or JSON)")
	_ = fs.Parse(args)

	if *schemaPath == "" {
		fatalf("flatten: -schema is required")
	}

	fields, err := readFields(*schemaPath)
	if err != nil {
		fatalf("%v", err)
	}

	list := schema.Flatten(&fields)
	a.dump("flattened", list)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tLEVEL\tTYPE\tCUSTOM")

	for _, f := range list {
		fmt.Fprintf(w, "%s%s\t%d\t%s\t%t\n",
			strings.Repeat("  ", f.Level), f.Key(), f.Level, f.Type.DisplayName(), f.IsCustom)
	}

	if err := w.Flush(); err != nil {
		fatalf("%v", err)
	}

	return 0
}

func (a *app) checkCmd(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	mapperPath := fs.String("mapper", "", "mapper definition (YAML or JSON)")
	inputsPath := fs.String("inputs", "", "input schema tree")
	outputsPath := fs.String("outputs", "", "output schema tree")
	contextPath := fs.String("context", "", "static data tree")
	keysPath := fs.String("keys", "", "mapper key vocabulary")
	online := fs.Bool("online", false, "fetch the schemas from the host")
	saveDraft := fs.Bool("save-draft", false, "save the resumed mapper as a draft (with -online)")
	_ = fs.Parse(args)

	if *mapperPath == "" {
		fatalf("check: -mapper is required")
	}

	def, err := mapping.LoadFile(*mapperPath)
	if err != nil {
		fatalf("%v", err)
	}

	a.dump("definition", def)

	var res *diagnostic.Diagnostics

	if *online {
		res, err = a.checkOnline(def, *saveDraft)
	} else {
		res, err = a.checkOffline(def, *inputsPath, *outputsPath, *contextPath, *keysPath)
	}

	if err != nil {
		fatalf("%v", err)
	}

	return printDiagnostics(res)
}

// checkOffline validates def against trees read from files. A side
// without a file is not checked.
func (a *app) checkOffline(def *mapping.Definition, inputsPath, outputsPath, contextPath, keysPath string) (*diagnostic.Diagnostics, error) {
	var s mapping.Schemas

	load := func(path string) (schema.FlatList, error) {
		if path == "" {
			return nil, nil
		}

		fields, err := readFields(path)
		if err != nil {
			return nil, err
		}

		list := schema.Flatten(&fields)
		if list == nil {
			list = schema.FlatList{}
		}

		return list, nil
	}

	var err error
	if s.Inputs, err = load(inputsPath); err != nil {
		return nil, err
	}

	if s.Outputs, err = load(outputsPath); err != nil {
		return nil, err
	}

	if s.Context, err = load(contextPath); err != nil {
		return nil, err
	}

	if keysPath != "" {
		if s.Keys, err = readKeys(keysPath); err != nil {
			return nil, err
		}
	}

	if s.Inputs != nil && s.Outputs != nil {
		def.Fields = relation.FixRelations(def.Fields, s.Outputs, s.Inputs)
	}

	a.log.WithField("mapper", def.Name).
		WithField("relations", len(def.Fields)).
		Debug("Checking mapper offline")

	return mapping.Validate(def, s), nil
}

// checkOnline resumes def against the host the way the editor opens a
// saved mapper.
func (a *app) checkOnline(def *mapping.Definition, saveDraft bool) (*diagnostic.Diagnostics, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := host.NewClient(a.cfg.Host.URL, host.WithTimeout(a.cfg.Host.Timeout))

	opts := []session.Option{
		session.WithLogger(a.log),
		session.WithVariant(a.variant()),
	}

	if saveDraft {
		store, err := draft.NewFileStore(a.cfg.Drafts.Dir)
		if err != nil {
			return nil, err
		}

		opts = append(opts, session.WithDrafts(store, a.cfg.Drafts.Debounce))
	}

	s := session.New(client, opts...)
	defer s.Close()

	res, err := s.Resume(ctx, def, nil)
	if err != nil {
		return nil, err
	}

	if def.Context != nil {
		removed, err := s.LoadContext(ctx, def.Context.Kind)
		if err != nil {
			return nil, err
		}

		if removed > 0 {
			fmt.Fprintf(os.Stderr, "%d relation(s) to missing static data removed\n", removed)
		}

		res = s.Validate()
	}

	a.dump("relations", s.Relations())

	if saveDraft {
		if err := s.SaveDraft(ctx); err != nil {
			return nil, err
		}

		fmt.Fprintf(os.Stderr, "draft saved: %s\n", s.DraftID())
	}

	return res, nil
}

func (a *app) suggestCmd(args []string) int {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	inputsPath := fs.String("inputs", "", "input schema tree")
	outputsPath := fs.String("outputs", "", "output schema tree")
	limit := fs.Int("limit", a.cfg.Mapper.SuggestLimit, "candidates per output field (0 for all)")
	bindable := fs.Bool("bindable", false, "only inputs a name binding accepts")
	_ = fs.Parse(args)

	if *inputsPath == "" || *outputsPath == "" {
		fatalf("suggest: -inputs and -outputs are required")
	}

	s := session.New(host.NewMemory(), session.WithLogger(a.log))
	defer s.Close()

	for side, path := range map[common.Side]string{common.SideInputs: *inputsPath, common.SideOutputs: *outputsPath} {
		fields, err := readFields(path)
		if err != nil {
			fatalf("%v", err)
		}

		if err := s.LoadSchema(side, fields); err != nil {
			fatalf("%v", err)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPUT\tINPUT\tSCORE\tCOMPATIBILITY\tNOTE")

	suggest := s.Suggest
	if *bindable {
		suggest = s.SuggestBindable
	}

	for _, out := range s.Flat(common.SideOutputs) {
		candidates, err := suggest(out.Key(), 0)
		if err != nil {
			fatalf("%v", err)
		}

		a.dump("candidates "+out.Key(), candidates)

		notes := candidateNotes(candidates)
		if *limit > 0 {
			candidates = candidates.Top(*limit)
		}

		for i, c := range candidates {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", out.Key(), c.Input.Key(), c.CombinedScore, c.Compat, notes[i])
		}
	}

	if err := w.Flush(); err != nil {
		fatalf("%v", err)
	}

	return 0
}

// candidateNotes marks a confident winner, or the leading candidates
// whose scores are too close to pick one.
func candidateNotes(candidates match.CandidateList) []string {
	notes := make([]string, len(candidates))

	if candidates.HighConfidence(match.DefaultMinScore, match.DefaultMinGap) != nil {
		notes[0] = "confident"
		return notes
	}

	if candidates.IsAmbiguous(match.DefaultAmbiguityThreshold) {
		top := candidates[0].CombinedScore
		for i, c := range candidates {
			if top-c.CombinedScore >= match.DefaultAmbiguityThreshold {
				break
			}

			notes[i] = "ambiguous"
		}
	}

	return notes
}

func (a *app) urlCmd(args []string) int {
	fs := flag.NewFlagSet("url", flag.ExitOnError)
	descriptor := fs.String("descriptor", "", "compact provider descriptor, e.g. connection/db/orders")
	schemaURL := fs.Bool("schema", false, "print the schema URL instead of the record URL")
	withOptions := fs.Bool("options", false, "print the constructor options URL")
	search := fs.Bool("search", false, "leave the record suffix off")
	_ = fs.Parse(args)

	if *descriptor == "" {
		fatalf("url: -descriptor is required")
	}

	d, err := provider.ParseDescriptor(*descriptor)
	if err != nil {
		fatalf("%v", err)
	}

	a.dump("descriptor", d)

	catalog := provider.NewCatalog(a.variant())

	var url string
	if *schemaURL {
		url, err = catalog.SchemaURL(d)
	} else {
		url, err = catalog.URL(d, provider.URLOptions{WithOptions: *withOptions, IsRecordSearch: *search})
	}

	if err != nil {
		fatalf("%v", err)
	}

	fmt.Println(url)

	return 0
}

// variant maps the configured catalog variant.
func (a *app) variant() provider.Variant {
	switch a.cfg.Mapper.Variant {
	case "config_item":
		return provider.Variant{ConfigItem: true}
	case "request":
		return provider.Variant{RequiresRequest: true}
	case "record_type":
		return provider.Variant{RecordType: true}
	default:
		return provider.Variant{}
	}
}

// printDiagnostics writes every diagnostic and returns the exit code.
func printDiagnostics(res *diagnostic.Diagnostics) int {
	for d := range res.All() {
		fmt.Printf("%s: %s\n", d.Severity, d)
	}

	if res.HasErrors() {
		return 1
	}

	fmt.Println("ok")

	return 0
}
