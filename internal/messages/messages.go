package messages

// Detail carries the human-readable text for one finding kind.
type Detail struct {
	Title       string
	Description string
	Remediation string
}

var findingMessages = map[string]Detail{
	"HEADER_MISSING_Strict-Transport-Security": {
		Title:       "Missing Strict-Transport-Security",
		Description: "HSTS header missing - site vulnerable to SSL stripping attacks",
		Remediation: "Set Strict-Transport-Security with a max-age of at least one year on all HTTPS responses.",
	},
	"HEADER_MISSING_Content-Security-Policy": {
		Title:       "Missing Content-Security-Policy",
		Description: "CSP header missing - increases XSS attack surface",
		Remediation: "Define a Content-Security-Policy that restricts script sources to trusted origins.",
	},
	"HEADER_MISSING_X-Frame-Options": {
		Title:       "Missing X-Frame-Options",
		Description: "X-Frame-Options missing - site may be vulnerable to clickjacking",
		Remediation: "Set X-Frame-Options: DENY or SAMEORIGIN, or use the CSP frame-ancestors directive.",
	},
	"HEADER_MISSING_X-Content-Type-Options": {
		Title:       "Missing X-Content-Type-Options",
		Description: "X-Content-Type-Options missing - browser may MIME-sniff content",
		Remediation: "Set X-Content-Type-Options: nosniff.",
	},
	"HEADER_MISSING_Referrer-Policy": {
		Title:       "Missing Referrer-Policy",
		Description: "Referrer-Policy missing - referrer information may leak",
		Remediation: "Set Referrer-Policy: strict-origin-when-cross-origin or stricter.",
	},
	"HEADER_MISSING_Permissions-Policy": {
		Title:       "Missing Permissions-Policy",
		Description: "Permissions-Policy missing - browser features not restricted",
		Remediation: "Declare a Permissions-Policy disabling browser features the site does not use.",
	},
	"CORS_WILDCARD_ORIGIN": {
		Title:       "CORS Wildcard Origin Allowed",
		Description: "The Access-Control-Allow-Origin header is set to '*', allowing resource access from any domain.",
		Remediation: "Specify a trusted domain in Access-Control-Allow-Origin instead of a wildcard and validate the Origin header server-side.",
	},
	"CORS_WILDCARD_WITH_CREDENTIALS": {
		Title:       "CORS Wildcard with Credentials Enabled",
		Description: "Access-Control-Allow-Origin is '*' while Access-Control-Allow-Credentials is true. This is an unsafe CORS policy combination.",
		Remediation: "Do not use wildcard origins with credentials. Return a strict allowlisted origin and set Vary: Origin.",
	},
	"COOKIE_MISSING_SECURE": {
		Title:       "Cookie Without Secure Flag",
		Description: "A session cookie is set without the Secure attribute and may be sent over plaintext HTTP.",
		Remediation: "Mark all cookies Secure so they are only transmitted over HTTPS.",
	},
	"COOKIE_MISSING_HTTPONLY": {
		Title:       "Cookie Without HttpOnly Flag",
		Description: "A cookie is set without the HttpOnly attribute and is readable by client-side script.",
		Remediation: "Mark cookies HttpOnly unless script access is strictly required.",
	},
	"REFLECTED_PARAMETER": {
		Title:       "Reflected Query Parameter",
		Description: "A query parameter value is reflected unencoded in the response body, which may enable reflected XSS.",
		Remediation: "HTML-encode all user-supplied values before writing them into responses.",
	},
	"OPEN_REDIRECT_PARAMETER": {
		Title:       "Possible Open Redirect Parameter",
		Description: "A redirect-style query parameter appears to be echoed into a Location header or link target.",
		Remediation: "Validate redirect targets against an allowlist of internal paths.",
	},
	"SERVER_BANNER": {
		Title:       "Server Version Disclosure",
		Description: "The response exposes server software and version information, aiding attacker reconnaissance.",
		Remediation: "Suppress or genericize the Server and X-Powered-By headers.",
	},
	"SENSITIVE_PATH_EXPOSED": {
		Title:       "Sensitive Path Accessible",
		Description: "A commonly sensitive path responded successfully and may expose internal information.",
		Remediation: "Restrict access to administrative and metadata paths or remove them from production.",
	},
}

// Get returns the text for a finding id. Unknown ids yield a zero Detail
// so callers can fall back to their own wording.
func Get(id string) Detail {
	return findingMessages[id]
}
