package card

import (
	"golang.org/x/text/language"

	"github.com/xwteam/mascot/internal/lookup"
	"github.com/xwteam/mascot/internal/visitor"
)

// Labels are the fixed captions printed on the card, plus the wording for
// values that could not be determined.
type Labels struct {
	Title   string
	IP      string
	From    string
	Browser string
	OS      string
	Weather string

	UnknownLocation string
	NoWeather       string
	UnknownBrowser  string
	UnknownOS       string
}

// localize swaps a lookup or user-agent placeholder for its caption.
func (l Labels) localize(v string) string {
	switch v {
	case lookup.UnknownLocation:
		return l.UnknownLocation
	case lookup.WeatherUnavailable:
		return l.NoWeather
	case visitor.UnknownBrowser:
		return l.UnknownBrowser
	case visitor.UnknownOS:
		return l.UnknownOS
	}
	return v
}

var (
	englishLabels = Labels{
		Title:   "Visitor Card",
		IP:      "IP",
		From:    "From",
		Browser: "Browser",
		OS:      "System",
		Weather: "Current weather",

		UnknownLocation: lookup.UnknownLocation,
		NoWeather:       lookup.WeatherUnavailable,
		UnknownBrowser:  visitor.UnknownBrowser,
		UnknownOS:       visitor.UnknownOS,
	}
	chineseLabels = Labels{
		Title:   "访客签名卡",
		IP:      "IP地址",
		From:    "来自",
		Browser: "浏览器",
		OS:      "系统",
		Weather: "当前天气",

		UnknownLocation: "未知位置",
		NoWeather:       "暂无天气信息",
		UnknownBrowser:  "未知浏览器",
		UnknownOS:       "未知系统",
	}
)

// The first tag is the fallback.
var (
	labelTags    = []language.Tag{language.English, language.SimplifiedChinese}
	labelSets    = []Labels{englishLabels, chineseLabels}
	labelMatcher = language.NewMatcher(labelTags)
)

// LabelsFor negotiates card captions from an Accept-Language header value.
func LabelsFor(acceptLanguage string) Labels {
	if acceptLanguage == "" {
		return englishLabels
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return englishLabels
	}
	_, idx, conf := labelMatcher.Match(tags...)
	if conf == language.No {
		return englishLabels
	}
	return labelSets[idx]
}
