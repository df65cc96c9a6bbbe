package jobfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/shaiso/skyfetch/internal/pipeline"
)

// Job — одно скомпилированное задание из jobfile.
type Job struct {
	// Name — метка блока job.
	Name string

	// Pipeline — готовый текст pipeline.
	Pipeline string
}

// hclFile — корневая структура jobfile.
type hclFile struct {
	Jobs []*hclJob `hcl:"job,block"`
}

// hclJob — один блок job. Либо pipeline, либо сахар.
type hclJob struct {
	Name string `hcl:"name,label"`

	Pipeline string `hcl:"pipeline,optional"`

	// Producer: ровно один из трёх.
	Fetch  string `hcl:"fetch,optional"`  // имя site
	Stream string `hcl:"stream,optional"` // имя site
	Read   string `hcl:"read,optional"`   // путь файла

	// Необязательный filter.
	Convert string `hcl:"convert,optional"` // целевой формат

	// Consumer: ровно один из двух.
	Into  string `hcl:"into,optional"`  // путь выходного файла (save)
	Store string `hcl:"store,optional"` // область БД (store)
}

// Load читает jobfile и компилирует все блоки job.
func Load(path string) ([]Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", path, diags)
	}
	return decode(file.Body, path)
}

// Parse компилирует jobfile из памяти (тесты, stdin).
func Parse(src []byte, filename string) ([]Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}
	return decode(file.Body, filename)
}

// decode разбирает тело файла и компилирует блоки.
func decode(body hcl.Body, filename string) ([]Job, error) {
	var f hclFile
	if diags := gohcl.DecodeBody(body, evalContext(), &f); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("%s: no job blocks", filename)
	}

	seen := make(map[string]bool, len(f.Jobs))
	jobs := make([]Job, 0, len(f.Jobs))
	for _, j := range f.Jobs {
		if seen[j.Name] {
			return nil, fmt.Errorf("%s: duplicate job %q", filename, j.Name)
		}
		seen[j.Name] = true

		text, err := j.compile()
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", j.Name, err)
		}

		// Скомпилированный текст обязан разбираться штатным парсером:
		// ошибки квотирования ловятся здесь, а не при submit.
		if _, err := pipeline.Parse(text); err != nil {
			return nil, fmt.Errorf("job %q: compiled pipeline invalid: %w", j.Name, err)
		}

		jobs = append(jobs, Job{Name: j.Name, Pipeline: text})
	}

	return jobs, nil
}

// evalContext — переменные, доступные в выражениях jobfile.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

// compile собирает текст pipeline из блока job.
func (j *hclJob) compile() (string, error) {
	if j.Pipeline != "" {
		if j.Fetch != "" || j.Stream != "" || j.Read != "" ||
			j.Convert != "" || j.Into != "" || j.Store != "" {
			return "", fmt.Errorf("pipeline attribute excludes sugar attributes")
		}
		return j.Pipeline, nil
	}

	var calls []string

	switch producers := countSet(j.Fetch, j.Stream, j.Read); producers {
	case 0:
		return "", fmt.Errorf("one of fetch, stream or read is required")
	case 1:
	default:
		return "", fmt.Errorf("fetch, stream and read are mutually exclusive")
	}

	switch {
	case j.Fetch != "":
		calls = append(calls, fmt.Sprintf("fetch(site=%q)", j.Fetch))
	case j.Stream != "":
		calls = append(calls, fmt.Sprintf("stream(site=%q)", j.Stream))
	case j.Read != "":
		calls = append(calls, fmt.Sprintf("read(path=%q)", j.Read))
	}

	if j.Convert != "" {
		calls = append(calls, fmt.Sprintf("convert(to=%s)", j.Convert))
	}

	switch consumers := countSet(j.Into, j.Store); consumers {
	case 0:
		return "", fmt.Errorf("one of into or store is required")
	case 1:
	default:
		return "", fmt.Errorf("into and store are mutually exclusive")
	}

	if j.Into != "" {
		calls = append(calls, fmt.Sprintf("save(out=%q)", j.Into))
	} else {
		calls = append(calls, fmt.Sprintf("store(area=%q)", j.Store))
	}

	return strings.Join(calls, " -> "), nil
}

// countSet считает непустые значения.
func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
