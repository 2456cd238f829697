package config

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/internal/xerr"
)

// WriteSchedule marshals doc and writes it to path atomically: the
// document is written to a sibling temp file first and only renamed into
// place once the write succeeds in full, so a failure never leaves a
// partial schedule file behind (spec.md §7: "partial output files are not
// created on failure").
func WriteSchedule(path string, doc *ScheduleDocument) error {
	return writeXMLAtomic(path, doc)
}

// ReadSchedule decodes a previously written schedule document, used by
// the round-trip validation path (spec.md §8).
func ReadSchedule(path string) (*ScheduleDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, path, "open schedule document", err)
	}
	defer f.Close()

	var doc ScheduleDocument
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, path, "decode schedule document", err)
	}
	return &doc, nil
}

// WriteTuneParams persists the parameter set produced by Adapter.Tune
// (spec.md §4.5, §6 "Files written in tune mode").
func WriteTuneParams(path string, params solver.ParamSet) error {
	doc := &TuneParamsDocument{Params: make([]TuneParamXML, 0, len(params))}
	for k, v := range params {
		doc.Params = append(doc.Params, TuneParamXML{Key: k, Value: v})
	}
	return writeXMLAtomic(path, doc)
}

// ReadTuneParams loads a previously written tune-parameter file.
func ReadTuneParams(path string) (solver.ParamSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, path, "open tune params document", err)
	}
	defer f.Close()

	var doc TuneParamsDocument
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, path, "decode tune params document", err)
	}
	params := make(solver.ParamSet, len(doc.Params))
	for _, p := range doc.Params {
		params[p.Key] = p.Value
	}
	return params, nil
}

func writeXMLAtomic(path string, doc any) error {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return xerr.Wrap(xerr.InternalInvariant, path, "marshal xml document", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return xerr.Wrap(xerr.InternalInvariant, path, "create temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return xerr.Wrap(xerr.InternalInvariant, path, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return xerr.Wrap(xerr.InternalInvariant, path, "close temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return xerr.Wrap(xerr.InternalInvariant, path, "rename temp file into place", err)
	}
	return nil
}
