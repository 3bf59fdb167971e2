package dto

// JSONAPIVersion 응답에 포함되는 JSON:API 버전 정보
var JSONAPIVersion = JSONAPI{
	Version: "1.0",
	Meta: map[string]interface{}{
		"links": map[string]interface{}{
			"self": Link{Href: "http://jsonapi.org/format/1.0/"},
		},
	},
}

// MediaType JSON:API 응답 Content-Type
const MediaType = "application/vnd.api+json"

// JSONAPI 최상위 jsonapi 멤버
type JSONAPI struct {
	Version string                 `json:"version"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// Link 링크 객체
type Link struct {
	Href string `json:"href"`
}

// Links 링크 모음 (self, related 등)
type Links map[string]Link

// ResourceIdentifier 관계에 사용되는 리소스 식별자
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship 관계 객체. Data는 ResourceIdentifier, 슬라이스 또는 nil입니다.
type Relationship struct {
	Data  interface{} `json:"data"`
	Links Links       `json:"links,omitempty"`
}

// ResourceObject 단일 리소스 객체
type ResourceObject struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]interface{}  `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         Links                   `json:"links,omitempty"`
}

// Document 최상위 응답 문서. Data는 *ResourceObject, []*ResourceObject 또는 nil입니다.
type Document struct {
	JSONAPI  JSONAPI                `json:"jsonapi"`
	Data     interface{}            `json:"data"`
	Included []*ResourceObject      `json:"included,omitempty"`
	Links    Links                  `json:"links,omitempty"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

// ErrorObject 에러 객체
type ErrorObject struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}

// ErrorDocument 에러 응답 문서
type ErrorDocument struct {
	JSONAPI JSONAPI       `json:"jsonapi"`
	Errors  []ErrorObject `json:"errors"`
}

// NewDocument 기본 jsonapi 멤버를 채운 문서 생성
func NewDocument(data interface{}, links Links) *Document {
	return &Document{
		JSONAPI: JSONAPIVersion,
		Data:    data,
		Links:   links,
	}
}
