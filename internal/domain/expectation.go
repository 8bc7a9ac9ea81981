package domain

// SeriesEntry 是标题中形如 "Name 3" 的系列片段。
type SeriesEntry struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Expectation 是从文件名解析得到的期望记录，用作身份匹配的基准。
//
// 不变量（实现必须遵守）：
// - CompareTitle / CompareStudio 只能由 textnorm 从 Title / Studio 计算得到，之后不允许手工修改
// - 创建后不可变；后续阶段只读
type Expectation struct {
	Path string `json:"path"`

	Studio      string        `json:"studio"`
	Title       string        `json:"title"`
	SearchTitle string        `json:"search_title"`
	Series      []SeriesEntry `json:"series,omitempty"`

	CompareStudio string `json:"compare_studio"`
	CompareTitle  string `json:"compare_title"`

	// Year 为 0 表示文件名没有年份。
	Year int `json:"year,omitempty"`
	// Cast 为空表示文件名没有演员列表，由站点数据决定。
	Cast []string `json:"cast,omitempty"`
	// Duration 单位分钟；0 表示未知（由宿主提供，文件名本身不携带）。
	Duration int `json:"duration,omitempty"`

	Collections []string `json:"collections,omitempty"`
}

func (e Expectation) HasYear() bool { return e.Year > 0 }

func (e Expectation) HasDuration() bool { return e.Duration > 0 }

// IsSeries 表示标题包含至少一个系列片段。
func (e Expectation) IsSeries() bool { return len(e.Series) > 0 }
