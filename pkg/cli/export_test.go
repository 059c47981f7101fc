package cli

// RunWithWriter runs the app writing command results to w
var RunWithWriter = run

var (
	ParseControlSpec = parseControlSpec
	ParseMapOverride = parseMapOverride
)
