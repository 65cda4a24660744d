package succ

import (
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/word"
)

// decoded is the minimal interface both Word variants satisfy for
// extracting a representative concrete configuration.
type decoded interface {
	Decode() (plantLocation string, plantVals []word.ClockValuation, ataVals []word.AtaValuation)
}

// IsJointlyAccepting reports whether w's representative concretization is
// simultaneously accepting for the plant and the ATA (spec §4.7 expansion
// step 3: "some word's candidate concretization is jointly accepting for
// plant and ATA" -- the "bad" termination).
func IsJointlyAccepting(plant ta.Plant, ata ta.ATA, w word.Word) bool {
	d, ok := w.(decoded)
	if !ok {
		return false
	}
	loc, plantVals, ataVals := d.Decode()
	valMap := make(map[string]float64, len(plantVals))
	for _, v := range plantVals {
		valMap[v.Clock] = v.Value
	}
	plantCfg := ta.PlantConfiguration{Location: ta.Location(loc), Valuation: valMap}
	if !plant.IsAccepting(plantCfg) {
		return false
	}
	ataCfg := make([]ta.AtaState, len(ataVals))
	for i, v := range ataVals {
		ataCfg[i] = ta.AtaState{Location: ta.Location(v.Location), Instance: v.Instance, Value: v.Value}
	}
	return ata.IsAccepting(ataCfg)
}

// HasSatisfiableAtaConfiguration reports whether w contains at least one ATA
// location other than the sink (spec §4.7 expansion step 4: a node is
// GOOD-by-death when every word contains the ATA sink everywhere). A word
// with no ATA locations at all, or an ATA without a sink, also counts as
// satisfiable.
func HasSatisfiableAtaConfiguration(ata ta.ATA, w word.Word) bool {
	sink, hasSink := ata.SinkLocation()
	d, ok := w.(decoded)
	if !ok {
		return true
	}
	_, _, ataVals := d.Decode()
	if len(ataVals) == 0 {
		return true
	}
	if !hasSink {
		return true
	}
	for _, v := range ataVals {
		if ta.Location(v.Location) != sink {
			return true
		}
	}
	return false
}
