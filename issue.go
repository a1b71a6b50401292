package assetclean

// Issue is a non-fatal problem found during a run. Issues never stop a
// run; they are logged, printed in the summary and returned in Result.
type Issue struct {
	File string `json:"file"` // slash path relative to the project root
	Text string `json:"text"`
}

func (i Issue) String() string {
	if i.File == "" {
		return i.Text
	}
	return i.File + ": " + i.Text
}

// Issue texts
const (
	IssueMalformedCSS        = "dropped %d malformed CSS construct(s)"
	IssueMalformedInlineCSS  = "dropped %d malformed CSS construct(s) in <style>"
	IssueQuarantineCollision = "quarantine target %s already used in this run, overwriting"
	IssueQuarantineReplace   = "replacing %s left by an earlier run"
)

func issueStrings(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return out
}
