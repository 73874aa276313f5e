package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Lunar/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Lunar"
	AppCommand        = "go-lunar"
	LocalhostBindAddr = "127.0.0.1"
	EnvPrefix         = "GO_LUNAR_"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermOutput represents -rw-r--r--. Rendered documents are meant to be shared.
	FilePermOutput fs.FileMode = 0644

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagYear         = "year"
	FlagOutput       = "output"
	FlagMoon         = "moon"
	FlagImage        = "image"
	FlagSuccinct     = "succinct"
	FlagICS          = "ics"
	FlagLang         = "lang"
	FlagTemplate     = "template"
	FlagFixture      = "fixture"
	FlagEphemerisURL = "ephemeris-url"
	FlagWorkers      = "workers"
	FlagPort         = "port"
	FlagDebug        = "debug"
	FlagVersion      = "version"

	FlagShortYear     = "y"
	FlagShortOutput   = "o"
	FlagShortMoon     = "M"
	FlagShortImage    = "i"
	FlagShortSuccinct = "S"
	FlagShortVersion  = "v"

	CmdRootUse    = AppCommand + " [year]"
	CmdRootShort  = "Render the lunar calendar of a year as an HTML page"
	CmdServeUse   = "serve [year]"
	CmdServeShort = "Render a year and serve it over HTTP with its iCalendar feed"

	FlagDescYear         = "Year to generate"
	FlagDescOutput       = "Output HTML file (default 'lunar_calendar_YEAR.html')"
	FlagDescMoon         = "Use the moon image instead of vector discs"
	FlagDescImage        = "Moon image to use (implies --moon)"
	FlagDescSuccinct     = "Omit the event lists and footer"
	FlagDescICS          = "Also write the moon events as an iCalendar file (--ics=FILE, bare --ics writes 'lunar_calendar_YEAR.ics')"
	FlagDescLang         = "Language of month names and labels"
	FlagDescTemplate     = "HTML template file (default: embedded template)"
	FlagDescFixture      = "YAML ephemeris fixture to use instead of computed phases"
	FlagDescEphemerisURL = "Base URL of a remote ephemeris service"
	FlagDescWorkers      = "Number of concurrent workers computing daily phases"
	FlagDescPort         = "HTTP port for the serve command"
	FlagDescDebug        = "Enable debug logging"
	FlagDescVersion      = "Show application version and exit"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
	MsgSaved         = "Success! Calendar saved to file %s\n"
	MsgUsageYear     = "please specify a year: %s <year>"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	// Supported year range of the bundled phase algorithm.
	MinYear = 1000
	MaxYear = 3000

	DefaultMoonImage   = "data/supermoon_l3_bw.png"
	DefaultLanguage    = "en"
	DefaultPort        = "18090"
	DefaultWorkers     = 4
	FormatOutputFile   = "lunar_calendar_%d.html"
	FormatICSFile      = "lunar_calendar_%d.ics"
	FormatEventUID     = "%s-%x@%s"
	EventUIDHashLength = 12

	// MaxEventsPerYear bounds the number of gateway queries per enumeration.
	// A year holds at most 13 occurrences of a phase.
	MaxEventsPerYear = 16

	// MinTerminatorOffset is the smallest distance, relative to the disc radius,
	// kept between the terminator chord and the disc centre.
	MinTerminatorOffset = 1e-6
)

// -----------------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------------

const (
	ViewBoxSize = 100.0
	MaskBoxSize = 1.0

	ClassLight      = "light"
	ClassShadow     = "shadow"
	ClassLightMask  = "lightMask"
	ClassShadowMask = "shadowMask"
	ClassBlackMoon  = "blackMoon"
	ClassBlueMoon   = "blueMoon"
	ClassNewMoon    = "newMoon"
	ClassFullMoon   = "fullMoon"
	ClassDay        = "day"

	FormatMaskID      = "mask_%02d_%02d"
	FormatMoonKey     = "MOON_%02d_%02d"
	FormatMonthKey    = "MONTH_%02d"
	FormatDayClassKey = "DAYCLASS_%02d_%02d"
	FormatPlaceholder = "<!-- %s -->"
	FormatEventTime   = "15:04"
	FormatEventDate   = "%02d %s %s"
	GridColumns       = 31

	KeyYear             = "YEAR"
	KeyTitle            = "TITLE"
	KeyGrid             = "CALENDAR_GRID"
	KeyNewMoons         = "NEW_MOONS"
	KeyFullMoons        = "FULL_MOONS"
	KeyNewMoonsSection  = "NEW_MOONS_SECTION"
	KeyFullMoonsSection = "FULL_MOONS_SECTION"
	KeyFooterSection    = "FOOTER_SECTION"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyTitle         = "title"
	TKeyNewMoons      = "new_moons"
	TKeyFullMoons     = "full_moons"
	TKeyFooter        = "footer"
	FormatTKeyMonth   = "month_%02d"
	FormatTKeyMonAbbr = "month_abbr_%02d"

	LocalesDir   = "locales"
	LocalePrefix = "active."
	LocaleSuffix = ".json"
	LocaleFormat = "json"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Lunar//Engine//EN"
	ICalCalName = "Moon Phases"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "golunar"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	SummaryNewMoon   = "New moon"
	SummaryFullMoon  = "Full moon"
	SummaryBlackMoon = "Black moon"
	SummaryBlueMoon  = "Blue moon"

	DefaultICalRefresh = 24 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 // ephemeris answers are tiny JSON documents
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteICS            = "/moons.ics"
	AddrSeparator       = ":"

	// Remote ephemeris service operations.
	EphemPathPreviousNew = "previous-new-moon"
	EphemPathNextNew     = "next-new-moon"
	EphemPathNextFull    = "next-full-moon"
	EphemQueryAt         = "at"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextHTML        = "text/html; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidYear      = "invalid year"
	ErrGatewayContract  = "ephemeris gateway broke its contract"
	ErrGatewayMissing   = "internal error: ephemeris gateway is not initialized"
	ErrGatewayQuery     = "ephemeris query failed"
	ErrOutOfRange       = "instant outside of ephemeris table"
	ErrFixtureLoad      = "failed to load ephemeris fixture"
	ErrFixtureParse     = "failed to parse ephemeris fixture"
	ErrLunation         = "failed to compute lunation"
	ErrEnumerate        = "failed to enumerate moon events"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrDecodeResponse   = "failed to decode ephemeris response"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrTemplateRead     = "failed to read template"
	ErrWriteOutput      = "failed to write output file"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrEnvParse         = "failed to parse environment"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrUnsupportedLang  = "unsupported language"
	ErrYearRequired     = "year is required"
	ErrYearNotInteger   = "year must be an integer"
	ErrWorkers          = "workers must be at least 1"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgNotFound     = "Not Found"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgGenStarted    = "Year generation started"
	MsgGenSuccess    = "Year generation successful"
	MsgEventsFound   = "Moon events enumerated"
	MsgRepeatedMoon  = "Repeated moon in month"
	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgFixtureLoaded = "Ephemeris fixture loaded"
	MsgDocRendered   = "Document rendered"
	MsgFileWritten   = "Output file written"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyYear      = "year"
	LogKeyGateway   = "gateway"
	LogKeyKind      = "kind"
	LogKeyInstant   = "instant"
	LogKeyCount     = "count"
	LogKeyDays      = "days"
	LogKeyNewMoons  = "new_moons"
	LogKeyFullMoons = "full_moons"
	LogKeyBlack     = "black_moons"
	LogKeyBlue      = "blue_moons"
	LogKeyStats     = "stats"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyWorkers   = "workers"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompEphemeris = "ephemeris"
	CompRender    = "render"
	CompServer    = "server"
	CompMain      = "main"
	CompI18n      = "i18n"
)
