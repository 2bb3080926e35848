// Package e2e drives the whole engine over a generated document corpus.
package e2e

import (
	"fmt"
	"strings"
)

// Document is one corpus entry. Slug becomes the file name stem; the
// signature phrase appears only in this document so queries can assert
// the right file comes back.
type Document struct {
	Slug    string
	Phrase  string
	Content string
}

// QueryCase is a query plus the slug(s) whose file must appear in the
// results.
type QueryCase struct {
	Query         string
	ExpectedSlugs []string
	Description   string
}

// Corpus holds generated documents and query cases.
type Corpus struct {
	Documents []Document
	Cases     []QueryCase
}

// Shared filler keeps common words spread across every document, so
// ranking has to rely on the rare signature terms.
const filler = "These notes were collected during the field season and filed with the archive for later review."

var topics = []struct {
	slug   string
	phrase string
	body   string
}{
	{"lighthouse_log", "lighthouse beacon rotation", "The lighthouse beacon rotation was measured at dusk. Keepers adjust the lighthouse beacon rotation each equinox."},
	{"orchard_notes", "apple orchard grafting", "Apple orchard grafting starts in early spring. The apple orchard grafting record lists rootstock per row."},
	{"harbor_schedule", "ferry berth allocation", "Ferry berth allocation changes with the tide tables. The harbor master posts the ferry berth allocation weekly."},
	{"glacier_survey", "crevasse depth soundings", "Crevasse depth soundings were taken along the eastern ridge. The team repeats crevasse depth soundings each August."},
	{"beekeeping_journal", "hive frame inspection", "Hive frame inspection happens every ten days. A hive frame inspection checks brood pattern and stores."},
	{"railway_manual", "signal interlocking procedure", "The signal interlocking procedure prevents conflicting routes. Staff drill the signal interlocking procedure quarterly."},
	{"herbarium_index", "pressed specimen mounting", "Pressed specimen mounting uses acid-free paper. The pressed specimen mounting guide covers labels and glue."},
	{"observatory_diary", "comet tail spectra", "Comet tail spectra were recorded on three clear nights. The comet tail spectra show strong sodium lines."},
	{"mill_ledger", "grain hopper throughput", "Grain hopper throughput peaked during the autumn delivery. The ledger tracks grain hopper throughput by day."},
	{"vineyard_report", "veraison onset date", "Veraison onset date arrived two weeks early. Growers compare the veraison onset date across plots."},
	{"foundry_notes", "crucible pour temperature", "Crucible pour temperature is held within a narrow band. Operators log the crucible pour temperature per melt."},
	{"tide_tables", "spring ebb interval", "The spring ebb interval shortens near the solstice. Pilots consult the spring ebb interval before departure."},
	{"falconry_records", "tiercel molt weight", "Tiercel molt weight is tracked through the summer. The tiercel molt weight chart guides feeding."},
	{"pottery_workshop", "kiln cone schedule", "The kiln cone schedule determines firing length. Apprentices memorize the kiln cone schedule."},
	{"cartography_file", "contour interval revision", "Contour interval revision follows the new survey. The contour interval revision affects every sheet."},
	{"apiary_map", "windbreak hedge spacing", "Windbreak hedge spacing shelters the southern stands. The windbreak hedge spacing was widened last year."},
	{"brewery_log", "mash tun rest", "The mash tun rest ran for seventy minutes. A longer mash tun rest changes the body of the beer."},
	{"stables_register", "farrier visit rotation", "The farrier visit rotation covers all four yards. A farrier visit rotation entry notes each shoeing."},
	{"weather_station", "anemometer calibration drift", "Anemometer calibration drift exceeded tolerance. The anemometer calibration drift is corrected monthly."},
	{"printing_house", "galley proof corrections", "Galley proof corrections are due by Thursday. The galley proof corrections use standard marks."},
	{"quarry_report", "bench blast pattern", "The bench blast pattern was redesigned for the lower face. Engineers review the bench blast pattern"},
	{"greenhouse_diary", "seedling hardening schedule", "The seedling hardening schedule begins after the last frost. Volunteers follow the seedling hardening schedule."},
	{"canal_survey", "lock gate clearance", "Lock gate clearance was measured at low water. The lock gate clearance limits barge width."},
	{"library_archive", "vellum folio restoration", "Vellum folio restoration requires stable humidity. The vellum folio restoration bench is in the annex."},
	{"fishery_notes", "smolt tagging run", "The smolt tagging run finished ahead of the rains. Biologists compare each smolt tagging run."},
	{"airfield_manual", "crosswind circuit joining", "Crosswind circuit joining is briefed before solo flights. The crosswind circuit joining diagram hangs in the tower."},
	{"distillery_record", "spirit cut points", "Spirit cut points decide the character of the run. The stillman notes spirit cut points by nose."},
	{"masonry_guide", "lime mortar curing", "Lime mortar curing needs damp hessian for a week. Slow lime mortar curing prevents shrinkage cracks."},
	{"telescope_maintenance", "mirror recoating cycle", "The mirror recoating cycle runs every two years. Downtime for the mirror recoating cycle is scheduled in winter."},
	{"orchestra_inventory", "contrabassoon reed stock", "Contrabassoon reed stock is low again. The contrabassoon reed stock is ordered from a single maker."},
	{"sawmill_journal", "band saw tensioning", "Band saw tensioning is checked at shift start. Poor band saw tensioning wanders the cut."},
	{"salt_works", "evaporation pond salinity", "Evaporation pond salinity rises through the dry months. Workers sample evaporation pond salinity at dawn."},
	{"bindery_notes", "headband sewing pattern", "The headband sewing pattern uses two silk colors. An even headband sewing pattern takes practice."},
	{"ropewalk_manual", "strand lay tension", "Strand lay tension sets the rope's stretch. The strand lay tension gauge is recalibrated weekly."},
	{"cheese_cellar", "rind washing rotation", "The rind washing rotation alternates brine and beer. A strict rind washing rotation keeps the mites away."},
	{"glassworks_log", "annealing lehr profile", "The annealing lehr profile was flattened for thick ware. A wrong annealing lehr profile leaves stress in the glass."},
	{"mine_survey", "adit ventilation flow", "Adit ventilation flow is measured at both portals. Low adit ventilation flow halts blasting."},
	{"tannery_record", "bark liquor strength", "Bark liquor strength is raised through the pits. The bark liquor strength ledger goes back decades."},
	{"shipyard_notes", "keel scarf joint", "The keel scarf joint was cut from a single oak crook. A tight keel scarf joint carries the whole hull."},
	{"paper_mill", "pulp beating duration", "Pulp beating duration controls the sheet strength. The pulp beating duration doubles for banknote stock."},
	{"clockmaker_bench", "escapement depthing check", "The escapement depthing check comes after bluing. A careless escapement depthing check ruins the action."},
	{"dye_house", "indigo vat reduction", "Indigo vat reduction is judged by the flower. Slow indigo vat reduction gives the deepest shade."},
	{"granary_report", "moisture probe readings", "Moisture probe readings are taken at three depths. Rising moisture probe readings trigger aeration."},
	{"forge_diary", "scarf weld flux", "Scarf weld flux keeps the joint clean. The smith mixes scarf weld flux from borax and sand."},
	{"loft_register", "homing pigeon clocking", "Homing pigeon clocking uses sealed timers. The homing pigeon clocking sheet is countersigned."},
	{"cooperage_notes", "stave joint listing", "Stave joint listing angles vary with cask size. The stave joint listing table covers firkins to butts."},
	{"chandlery_stock", "wick braid gauge", "Wick braid gauge matches the candle diameter. The wick braid gauge rack was rebuilt last month."},
	{"astronomy_annex", "meteor shower counts", "Meteor shower counts peaked after midnight. Volunteers submit meteor shower counts by radio."},
}

// BuildCorpus returns n documents and the query cases that target them.
// When n exceeds the topic list, extra documents repeat earlier content
// under new slugs, which keeps queries unambiguous only for the first
// occurrence.
func BuildCorpus(n int) *Corpus {
	docs := make([]Document, 0, n)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		slug := t.slug
		if i >= len(topics) {
			slug = fmt.Sprintf("%s_%d", t.slug, i/len(topics)+1)
		}
		docs = append(docs, Document{
			Slug:    slug,
			Phrase:  t.phrase,
			Content: t.body + " " + filler,
		})
	}

	cases := make([]QueryCase, 0, len(docs))
	seen := make(map[string]bool)
	for _, d := range docs {
		if seen[d.Phrase] {
			continue
		}
		seen[d.Phrase] = true
		cases = append(cases, QueryCase{
			Query:         d.Query(),
			ExpectedSlugs: []string{d.Slug},
			Description:   fmt.Sprintf("query %q finds %s", d.Query(), d.Slug),
		})
	}
	return &Corpus{Documents: docs, Cases: cases}
}

// Query returns the signature phrase as a search query.
func (d Document) Query() string {
	return d.Phrase
}

// HasPhrase reports whether the document's content carries its own
// signature phrase. Guard for corpus construction mistakes.
func (d Document) HasPhrase() bool {
	return strings.Contains(strings.ToLower(d.Content), strings.ToLower(d.Phrase))
}
