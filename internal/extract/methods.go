// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls structured research metadata out of paper text:
// a methods checklist, a recommendations list, and the reference list.
// All extractors are rule-based; an empty result is a normal outcome.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/paperlens/pkg/types"
)

// NoMethodsText is rendered when no category matched.
const NoMethodsText = "No methodological details could be detected in the text."

// Keyword families run against lower-cased text. Alternatives are ordered
// longest first so a compound term wins over its suffix.
var (
	quantitativeRe = regexp.MustCompile(`\b(?:quantitative|statistical analysis|survey research)\b`)
	qualitativeRe  = regexp.MustCompile(`\b(?:qualitative|thematic analysis|phenomenolog(?:y|ical)|lived experiences?)\b`)
	mixedRe        = regexp.MustCompile(`\bmixed[\s-]+methods?\b|\bmixed[\s-]+method\s+(?:design|approach)\b`)

	designRe = regexp.MustCompile(`\b(?:descriptive[\s-]correlational|descriptive[\s-]comparative|quasi[\s-]experimental|true[\s-]experimental|experimental|descriptive|correlational|causal[\s-]comparative|comparative|case stud(?:y|ies)|phenomenological|grounded theory|ethnograph(?:y|ic)|action research|cross[\s-]sectional|longitudinal|developmental research|design[\s-]based research|exploratory|narrative inquiry|systematic review|meta[\s-]analysis)\b`)

	environmentRe = regexp.MustCompile(`\b(?:public (?:elementary |secondary |high )?schools?|private (?:elementary |secondary |high )?schools?|senior high schools?|junior high schools?|elementary schools?|secondary schools?|high schools?|state universit(?:y|ies)|universit(?:y|ies)|colleges?|classrooms?|laborator(?:y|ies)|hospitals?|clinics?|rural (?:areas?|communit(?:y|ies))|urban (?:areas?|communit(?:y|ies))|online learning environments?|online|workplaces?|barangays?)\b`)

	instrumentsRe = regexp.MustCompile(`\b(?:researcher[\s-]made questionnaires?|survey questionnaires?|questionnaires?|semi[\s-]structured interviews?|structured interviews?|interview guides?|interviews?|focus group discussions?|focus groups?|observation (?:checklists?|guides?)|checklists?|rubrics?|likert[\s-]scales?|achievement tests?|pre[\s-]?tests?|post[\s-]?tests?|standardized tests?|sensors?|inventor(?:y|ies)|validated instruments?)\b`)

	softwareRe = regexp.MustCompile(`\b(?:ibm spss|spss|stata|sas|rstudio|r studio|python|matlab|microsoft excel|ms excel|excel|nvivo|atlas\.ti|jamovi|jasp|amos|smartpls|arduino|raspberry pi|internet of things|iot|io|android studio|android|php|mysql|firebase|tensorflow|google forms)\b`)

	analysisRe = regexp.MustCompile(`\b(?:descriptive statistics|inferential statistics|weighted mean|standard deviation|frequency counts?|percentages?|paired[\s-]samples? t[\s-]tests?|independent[\s-]samples? t[\s-]tests?|t[\s-]tests?|one[\s-]way anova|anova|chi[\s-]square|pearson(?:'s)? (?:r|product[\s-]moment correlation|correlation)|spearman(?:'s)? (?:rho|rank correlation)|multiple regression|linear regression|logistic regression|regression analysis|thematic analysis|content analysis|factor analysis|structural equation model(?:l)?ing|mann[\s-]whitney u?(?: test)?|wilcoxon signed[\s-]rank test|kruskal[\s-]wallis(?: test)?|cronbach(?:'s)? alpha)\b`)

	outcomesRe = regexp.MustCompile(`\b(?:academic performance|academic achievement|learning outcomes?|test scores?|student engagement|engagement|motivation|satisfaction|attitudes?|perceptions?|anxiety|self[\s-]efficacy|retention|usability|accuracy|efficiency|effectiveness|acceptability|reading comprehension|problem[\s-]solving skills?|critical thinking)\b`)

	sampleNRe       = regexp.MustCompile(`\bn\s*=\s*(\d[\d,]*)`)
	sampleLabeledRe = regexp.MustCompile(`\b(participants|respondents|students|subjects|samples|teachers|patients)\s*[:=]\s*(\d[\d,]*)`)
)

// canonicalTerms fixes the display of acronyms and brand names that title
// casing would get wrong. Keys are lower-cased with single spaces.
var canonicalTerms = map[string]string{
	"io":                 "IoT",
	"iot":                "IoT",
	"internet of things": "IoT",
	"spss":               "SPSS",
	"ibm spss":           "SPSS",
	"sas":                "SAS",
	"stata":              "Stata",
	"rstudio":            "RStudio",
	"r studio":           "RStudio",
	"matlab":             "MATLAB",
	"excel":              "Microsoft Excel",
	"ms excel":           "Microsoft Excel",
	"microsoft excel":    "Microsoft Excel",
	"nvivo":              "NVivo",
	"atlas.ti":           "ATLAS.ti",
	"jasp":               "JASP",
	"amos":               "AMOS",
	"smartpls":           "SmartPLS",
	"php":                "PHP",
	"mysql":              "MySQL",
	"tensorflow":         "TensorFlow",
	"anova":              "ANOVA",
	"one-way anova":      "One-Way ANOVA",
	"one way anova":      "One-Way ANOVA",
	"t-test":             "T-Test",
	"t test":             "T-Test",
	"t-tests":            "T-Test",
	"t tests":            "T-Test",
}

// categoryLabels are the checklist line labels.
var categoryLabels = map[string]string{
	types.CategoryApproach:    "Approach",
	types.CategoryDesign:      "Research Design",
	types.CategoryEnvironment: "Environment/Setting",
	types.CategorySample:      "Sample",
	types.CategoryInstruments: "Instruments/Tools",
	types.CategorySoftware:    "Software/Platforms",
	types.CategoryAnalysis:    "Data Analysis",
	types.CategoryOutcomes:    "Outcome Variables",
}

// Methods builds a checklist of the methodology terms found in text.
// Categories without a match are left out.
func Methods(text string) types.MethodsChecklist {
	lower := strings.ToLower(text)
	caser := cases.Title(language.English)

	var checklist types.MethodsChecklist
	add := func(name string, terms []string) {
		if len(terms) > 0 {
			checklist.Categories = append(checklist.Categories, types.ChecklistCategory{Name: name, Terms: terms})
		}
	}

	add(types.CategoryApproach, approach(lower))
	add(types.CategoryDesign, matchTerms(designRe, lower, caser))
	add(types.CategoryEnvironment, matchTerms(environmentRe, lower, caser))
	add(types.CategorySample, sampleSizes(lower))
	add(types.CategoryInstruments, matchTerms(instrumentsRe, lower, caser))
	add(types.CategorySoftware, matchTerms(softwareRe, lower, caser))
	add(types.CategoryAnalysis, matchTerms(analysisRe, lower, caser))
	add(types.CategoryOutcomes, matchTerms(outcomesRe, lower, caser))
	return checklist
}

// approach classifies the study as quantitative, qualitative or mixed.
// Mixed wins when it is explicit or both other families appear.
func approach(lower string) []string {
	quant := quantitativeRe.MatchString(lower)
	qual := qualitativeRe.MatchString(lower)
	switch {
	case mixedRe.MatchString(lower), quant && qual:
		return []string{"Mixed Methods"}
	case quant:
		return []string{"Quantitative"}
	case qual:
		return []string{"Qualitative"}
	}
	return nil
}

// matchTerms returns display forms of every match of re in first-seen
// order, deduplicated case-insensitively.
func matchTerms(re *regexp.Regexp, lower string, caser cases.Caser) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllString(lower, -1) {
		display := displayTerm(m, caser)
		key := strings.ToLower(display)
		if seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, display)
	}
	return terms
}

func displayTerm(match string, caser cases.Caser) string {
	key := strings.Join(strings.Fields(match), " ")
	if canon, ok := canonicalTerms[key]; ok {
		return canon
	}
	return caser.String(key)
}

// sampleSizes finds "n = 120" and labeled counts such as
// "participants: 30", rendering both with "=".
func sampleSizes(lower string) []string {
	var out []string
	seen := make(map[string]bool)
	push := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, m := range sampleNRe.FindAllStringSubmatch(lower, -1) {
		push("n = " + strings.TrimRight(m[1], ","))
	}
	for _, m := range sampleLabeledRe.FindAllStringSubmatch(lower, -1) {
		push(cases.Title(language.English).String(m[1]) + " = " + strings.TrimRight(m[2], ","))
	}
	return out
}

// MethodsMarkdown renders the checklist as a bulleted list. Only categories
// with terms produce a line.
func MethodsMarkdown(c types.MethodsChecklist) string {
	if c.IsEmpty() {
		return NoMethodsText
	}
	var b strings.Builder
	b.WriteString("**Methods Checklist**\n\n")
	for _, cat := range c.Categories {
		if len(cat.Terms) == 0 {
			continue
		}
		label := categoryLabels[cat.Name]
		if label == "" {
			label = cat.Name
		}
		b.WriteString("- **" + label + ":** " + strings.Join(cat.Terms, ", ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
