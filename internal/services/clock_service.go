package services

import (
	"strings"
	"time"

	"github.com/clockpro/backend/internal/utils"
)

type TimeInfo struct {
	Timezone  string  `json:"timezone"`
	Timestamp string  `json:"timestamp"` // RFC3339
	Unix      int64   `json:"unix"`
	Time12    string  `json:"12h"`
	Time24    string  `json:"24h"`
	Date      string  `json:"date"`
	DayOfWeek string  `json:"dayOfWeek"`
	UTCOffset float64 `json:"utcOffset"` // hours, may be fractional
	IsDST     bool    `json:"isDST"`
}

type WorldTimeQuery struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

type WorldTimeInfo struct {
	City      string    `json:"city"`
	Country   string    `json:"country,omitempty"`
	Timezone  string    `json:"timezone"`
	Error     string    `json:"error,omitempty"`
	TimeInfo  *TimeInfo `json:"time,omitempty"`
	IsNextDay bool      `json:"isNextDay"`
}

type TimezoneInfo struct {
	Timezone     string  `json:"timezone"`
	City         string  `json:"city"`
	Region       string  `json:"region"`
	UTCOffset    float64 `json:"utcOffset"`
	OffsetString string  `json:"offsetString"`
	IsDST        bool    `json:"isDST"`
}

type Conversion struct {
	From           ConvertedTime `json:"from"`
	To             ConvertedTime `json:"to"`
	TimeDifference int           `json:"timeDifference"` // minutes
}

type ConvertedTime struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
	Offset   string `json:"offset"`
}

type ClockService interface {
	TimeIn(tz string) (*TimeInfo, error)
	WorldTimes(entries []WorldTimeQuery) []WorldTimeInfo
	Timezones(search string) []TimezoneInfo
	Convert(timeStr, fromTZ, toTZ string) (*Conversion, error)
}

type clockService struct {
	now func() time.Time
}

func NewClockService() ClockService {
	return &clockService{now: time.Now}
}

// catalog is the zone list served by GET /clock/timezones. The Go runtime
// cannot enumerate the embedded tz database, so the picker works off a
// curated set of common zones; any IANA name is still accepted everywhere
// a timezone is an input.
var catalog = []string{
	"UTC",
	"Africa/Cairo", "Africa/Johannesburg", "Africa/Lagos", "Africa/Nairobi",
	"America/Anchorage", "America/Argentina/Buenos_Aires", "America/Bogota",
	"America/Chicago", "America/Denver", "America/Halifax", "America/Lima",
	"America/Los_Angeles", "America/Mexico_City", "America/New_York",
	"America/Phoenix", "America/Santiago", "America/Sao_Paulo",
	"America/St_Johns", "America/Toronto", "America/Vancouver",
	"Asia/Bangkok", "Asia/Dhaka", "Asia/Dubai", "Asia/Hong_Kong",
	"Asia/Jakarta", "Asia/Jerusalem", "Asia/Karachi", "Asia/Kathmandu",
	"Asia/Kolkata", "Asia/Kuala_Lumpur", "Asia/Manila", "Asia/Riyadh",
	"Asia/Seoul", "Asia/Shanghai", "Asia/Singapore", "Asia/Taipei",
	"Asia/Tehran", "Asia/Tokyo",
	"Atlantic/Azores", "Atlantic/Reykjavik",
	"Australia/Adelaide", "Australia/Brisbane", "Australia/Darwin",
	"Australia/Melbourne", "Australia/Perth", "Australia/Sydney",
	"Europe/Amsterdam", "Europe/Athens", "Europe/Berlin", "Europe/Brussels",
	"Europe/Dublin", "Europe/Helsinki", "Europe/Istanbul", "Europe/Lisbon",
	"Europe/London", "Europe/Madrid", "Europe/Moscow", "Europe/Oslo",
	"Europe/Paris", "Europe/Prague", "Europe/Rome", "Europe/Stockholm",
	"Europe/Vienna", "Europe/Warsaw", "Europe/Zurich",
	"Pacific/Auckland", "Pacific/Fiji", "Pacific/Honolulu",
}

const timezoneLimit = 100

func offsetHours(t time.Time) float64 {
	_, off := t.Zone()
	return float64(off) / 3600.0
}

// isDST reports whether t is in the zone's daylight-saving period, by
// comparing its offset against the smaller of the January and July offsets.
func isDST(t time.Time, loc *time.Location) bool {
	_, cur := t.In(loc).Zone()
	_, jan := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc).Zone()
	_, jul := time.Date(t.Year(), time.July, 1, 0, 0, 0, 0, loc).Zone()
	std := jan
	if jul < std {
		std = jul
	}
	return cur > std
}

func (s *clockService) timeInfoAt(t time.Time, tzName string, loc *time.Location) *TimeInfo {
	local := t.In(loc)
	return &TimeInfo{
		Timezone:  tzName,
		Timestamp: local.Format(time.RFC3339),
		Unix:      local.Unix(),
		Time12:    local.Format("3:04:05 PM"),
		Time24:    local.Format("15:04:05"),
		Date:      local.Format("2006-01-02"),
		DayOfWeek: local.Format("Monday"),
		UTCOffset: offsetHours(local),
		IsDST:     isDST(t, loc),
	}
}

func (s *clockService) TimeIn(tz string) (*TimeInfo, error) {
	const op = "ClockService.TimeIn"

	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "the specified timezone is not valid", err)
	}
	return s.timeInfoAt(s.now(), tz, loc), nil
}

func (s *clockService) WorldTimes(entries []WorldTimeQuery) []WorldTimeInfo {
	now := s.now()
	out := make([]WorldTimeInfo, 0, len(entries))
	for _, e := range entries {
		info := WorldTimeInfo{City: e.City, Country: e.Country, Timezone: e.Timezone}
		loc, err := time.LoadLocation(e.Timezone)
		if err != nil {
			info.Error = "invalid timezone"
			out = append(out, info)
			continue
		}
		info.TimeInfo = s.timeInfoAt(now, e.Timezone, loc)
		info.IsNextDay = now.In(loc).Day() != now.UTC().Day()
		out = append(out, info)
	}
	return out
}

func (s *clockService) Timezones(search string) []TimezoneInfo {
	now := s.now()
	search = strings.ToLower(search)

	var out []TimezoneInfo
	for _, name := range catalog {
		if search != "" && !strings.Contains(strings.ToLower(name), search) {
			continue
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			continue
		}
		local := now.In(loc)
		parts := strings.Split(name, "/")
		out = append(out, TimezoneInfo{
			Timezone:     name,
			City:         strings.ReplaceAll(parts[len(parts)-1], "_", " "),
			Region:       parts[0],
			UTCOffset:    offsetHours(local),
			OffsetString: local.Format("-07:00"),
			IsDST:        isDST(now, loc),
		})
		if len(out) >= timezoneLimit {
			break
		}
	}
	return out
}

const convertLayout = "2006-01-02 15:04:05"

func (s *clockService) Convert(timeStr, fromTZ, toTZ string) (*Conversion, error) {
	const op = "ClockService.Convert"

	if timeStr == "" || fromTZ == "" || toTZ == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "time, fromTimezone, and toTimezone are required", nil)
	}

	fromLoc, err := time.LoadLocation(fromTZ)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unable to convert time - check your inputs", err)
	}
	toLoc, err := time.LoadLocation(toTZ)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unable to convert time - check your inputs", err)
	}

	src, err := time.ParseInLocation(convertLayout, timeStr, fromLoc)
	if err != nil {
		src, err = time.ParseInLocation(time.RFC3339, timeStr, fromLoc)
		if err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "unable to convert time - check your inputs", err)
		}
	}
	dst := src.In(toLoc)

	_, srcOff := src.Zone()
	_, dstOff := dst.Zone()

	return &Conversion{
		From: ConvertedTime{
			Time:     src.Format(convertLayout),
			Timezone: fromTZ,
			Offset:   src.Format("-07:00"),
		},
		To: ConvertedTime{
			Time:     dst.Format(convertLayout),
			Timezone: toTZ,
			Offset:   dst.Format("-07:00"),
		},
		TimeDifference: (dstOff - srcOff) / 60,
	}, nil
}
