package version

const Value = "1.0.0"

func ScannerUserAgent() string {
	return "WebSecTester/" + Value + " Security Scanner"
}
