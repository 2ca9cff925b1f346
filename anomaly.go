// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// Anomaly messages: structural oddities a module can exhibit without being
// malformed enough to reject outright. None of these stop a parse; they
// are collected on Module.Anomalies for callers doing archival or malware
// analysis, the same spirit as a linter's "suspicious but legal" findings.
var (
	// AnoMultipleHeaderRecords is reported when a module contains more than
	// one THEADR/LHEADR record; only the first is a valid module header.
	AnoMultipleHeaderRecords = "module contains more than one THEADR/LHEADR record"

	// AnoDuplicatePublicName is reported when the same public symbol name
	// is defined by more than one PUBDEF/LPUBDEF entry in the module.
	AnoDuplicatePublicName = "duplicate public name defined in module"

	// AnoUnreferencedExternal is reported when an EXTDEF/LEXTDEF/CEXTDEF/
	// COMDEF/LCOMDEF entry is never the target of any FIXUP or weak-extern
	// pair in the module that defines it.
	AnoUnreferencedExternal = "external symbol defined but never referenced by a FIXUP"

	// AnoZeroLengthSegment is reported when a SEGDEF declares a non-big
	// segment of length zero; legal, but unusual enough that most
	// producers never emit it outside of placeholder segments.
	AnoZeroLengthSegment = "segment defined with zero length"
)

// computeAnomalies inspects a fully decoded module for the oddities above.
// It runs once at the end of ParseModule rather than interleaved with
// decoding, since several checks (duplicate names, unreferenced externs)
// need the whole record sequence to answer.
func computeAnomalies(m *Module) []string {
	var anomalies []string
	add := func(a string) {
		for _, existing := range anomalies {
			if existing == a {
				return
			}
		}
		anomalies = append(anomalies, a)
	}

	headerCount := 0
	publicNames := map[string]int{}
	referencedExtern := map[int]bool{}

	for _, rec := range m.Records {
		switch b := rec.Body.(type) {
		case THEADRBody:
			headerCount++
		case PUBDEFBody:
			for _, p := range b.Publics {
				publicNames[p.Name]++
			}
		case CommentBody:
			if pair, ok := b.Sub.(CommentWeakExtern); ok {
				for _, p := range pair.Pairs {
					referencedExtern[p.WeakIndex] = true
					referencedExtern[p.DefaultIndex] = true
				}
			}
		case FIXUPPBody:
			for _, sub := range b.Subrecords {
				if sub.Fixup == nil {
					continue
				}
				t := sub.Fixup.Target
				if t.TargetMethod == TargetExternIndex || t.TargetMethod == TargetExternIndexNoDisp {
					referencedExtern[t.TargetDatumIndex] = true
				}
				if t.FrameMethod == FrameExternIndex {
					referencedExtern[t.FrameDatumIndex] = true
				}
			}
		case SEGDEFBody:
			if !b.Big && b.Length == 0 {
				add(AnoZeroLengthSegment)
			}
		}
	}

	if headerCount > 1 {
		add(AnoMultipleHeaderRecords)
	}
	for _, count := range publicNames {
		if count > 1 {
			add(AnoDuplicatePublicName)
			break
		}
	}
	for i := 1; i < len(m.tables.externs); i++ {
		if !referencedExtern[i] {
			add(AnoUnreferencedExternal)
			break
		}
	}

	return anomalies
}
