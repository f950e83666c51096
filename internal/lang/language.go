// Package lang provides per-language stop words and suffix tables, language
// detection and the tokenizer used to build TF-IDF vectors.
package lang

// DefaultLanguage is returned by detection when no rule matches.
const DefaultLanguage = "en"

// CharsetCyrillic is the only character-set detection rule understood.
const CharsetCyrillic = "cyrillic"

// Language is one language resource document.
type Language struct {
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	StopWords []string   `json:"stop_words"`
	Endings   []string   `json:"endings"`
	Detection *Detection `json:"detection_patterns,omitempty"`
}

// Detection holds optional rules used by Registry.Detect.
type Detection struct {
	Charset     string   `json:"charset,omitempty"`
	Threshold   float64  `json:"threshold,omitempty"`
	SampleWords []string `json:"sample_words,omitempty"`
}

// Override merges caller-supplied settings into a language.
// StopWords are appended; every other non-empty field replaces the existing value.
type Override struct {
	Name      string             `json:"name,omitempty" mapstructure:"name"`
	StopWords []string           `json:"stop_words,omitempty" mapstructure:"stop_words"`
	Endings   []string           `json:"endings,omitempty" mapstructure:"endings"`
	Detection *DetectionOverride `json:"detection_patterns,omitempty" mapstructure:"detection_patterns"`
}

// DetectionOverride is the mergeable form of Detection.
type DetectionOverride struct {
	Charset     string   `json:"charset,omitempty" mapstructure:"charset"`
	Threshold   *float64 `json:"threshold,omitempty" mapstructure:"threshold"`
	SampleWords []string `json:"sample_words,omitempty" mapstructure:"sample_words"`
}

func (l Language) clone() Language {
	c := l
	c.StopWords = append([]string(nil), l.StopWords...)
	c.Endings = append([]string(nil), l.Endings...)
	if l.Detection != nil {
		d := *l.Detection
		d.SampleWords = append([]string(nil), l.Detection.SampleWords...)
		c.Detection = &d
	}
	return c
}

func (l Language) merge(o Override) Language {
	m := l.clone()
	if o.Name != "" {
		m.Name = o.Name
	}
	m.StopWords = append(m.StopWords, o.StopWords...)
	if o.Endings != nil {
		m.Endings = append([]string(nil), o.Endings...)
	}
	if o.Detection != nil {
		if m.Detection == nil {
			m.Detection = &Detection{}
		}
		if o.Detection.Charset != "" {
			m.Detection.Charset = o.Detection.Charset
		}
		if o.Detection.Threshold != nil {
			m.Detection.Threshold = *o.Detection.Threshold
		}
		if o.Detection.SampleWords != nil {
			m.Detection.SampleWords = append([]string(nil), o.Detection.SampleWords...)
		}
	}
	return m
}

// builtinLanguages is used when no resource directory is configured or it fails to load.
func builtinLanguages() []Language {
	return []Language{
		{
			Name: "English",
			Code: "en",
			StopWords: []string{
				"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
				"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
				"between", "both", "but", "by", "can", "could", "did", "do", "does", "doing",
				"down", "during", "each", "few", "for", "from", "further", "had", "has", "have",
				"having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
				"i", "if", "in", "into", "is", "it", "its", "itself", "just", "me",
				"more", "most", "my", "myself", "no", "nor", "not", "now", "of", "off",
				"on", "once", "only", "or", "other", "our", "ours", "ourselves", "out", "over",
				"own", "same", "she", "should", "so", "some", "such", "than", "that", "the",
				"their", "theirs", "them", "themselves", "then", "there", "these", "they", "this", "those",
				"through", "to", "too", "under", "until", "up", "very", "was", "we", "were",
				"what", "when", "where", "which", "while", "who", "whom", "why", "will", "with",
				"would", "you", "your", "yours", "yourself", "yourselves",
			},
			Endings: []string{
				"ational", "ization", "fulness", "ousness", "iveness",
				"ation", "ement", "ment", "ness", "able", "ible", "less", "ship",
				"ing", "ies", "ied", "ful", "ous", "ive", "ize", "ise",
				"est", "ed", "er", "ly", "es", "s",
			},
			Detection: &Detection{
				SampleWords: []string{"the", "and", "with", "this", "that", "have", "from", "what"},
			},
		},
		{
			Name: "Русский",
			Code: "ru",
			StopWords: []string{
				"и", "в", "во", "не", "что", "он", "на", "я", "с", "со",
				"как", "а", "то", "все", "она", "так", "его", "но", "да", "ты",
				"к", "у", "же", "вы", "за", "бы", "по", "только", "ее", "мне",
				"было", "вот", "от", "меня", "еще", "нет", "о", "из", "ему", "теперь",
				"когда", "даже", "ну", "вдруг", "ли", "если", "уже", "или", "ни", "быть",
				"был", "него", "до", "вас", "нибудь", "опять", "уж", "вам", "ведь", "там",
				"потом", "себя", "ничего", "ей", "может", "они", "тут", "где", "есть", "надо",
				"ней", "для", "мы", "тебя", "их", "чем", "была", "сам", "чтоб", "без",
				"будто", "чего", "раз", "тоже", "себе", "под", "будет", "ж", "тогда", "кто",
				"этот", "того", "потому", "этого", "какой", "совсем", "ним", "здесь", "этом", "один",
				"почти", "мой", "тем", "чтобы", "нее", "были", "куда", "зачем", "всех", "никогда",
				"можно", "при", "наконец", "два", "об", "другой", "хоть", "после", "над", "больше",
				"тот", "через", "эти", "нас", "про", "всего", "них", "какая", "много", "разве",
				"три", "эту", "моя", "впрочем", "хорошо", "свою", "этой", "перед", "иногда", "лучше",
				"чуть", "том", "нельзя", "такой", "им", "более", "всегда", "конечно", "всю", "между",
				"это", "эта",
			},
			Endings: []string{
				"иями", "ость", "ение", "ание", "ями", "ами", "ого", "его", "ому", "ему",
				"ыми", "ими", "ией", "ться", "ешь", "ишь", "ете", "ите", "ала", "ила",
				"ая", "яя", "ое", "ее", "ые", "ие", "ой", "ей", "ий", "ый",
				"ом", "ем", "ам", "ям", "ах", "ях", "ов", "ев", "ть",
				"а", "я", "о", "е", "ы", "и", "у", "ю", "ь",
			},
			Detection: &Detection{
				Charset:     CharsetCyrillic,
				Threshold:   0.3,
				SampleWords: []string{"это", "что", "как", "для", "привет"},
			},
		},
	}
}
