package canonical

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range englishStopWords {
		stopWords[w] = struct{}{}
	}
	for _, w := range russianStopWords {
		stopWords[w] = struct{}{}
	}
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

var englishStopWords = []string{
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"do", "does", "did", "have", "has", "had", "will", "would", "could", "should",
	"may", "might", "can", "shall", "not", "no", "and", "or", "but", "if",
	"then", "than", "so", "as", "at", "by", "for", "from", "in", "into",
	"of", "on", "to", "with", "about", "up", "out", "it", "its", "this",
	"that", "these", "those", "what", "which", "who", "whom", "how", "when", "where",
	"why", "you", "me", "i", "my", "your", "we", "our", "they", "their",
	"he", "she", "her", "him", "his", "us", "them", "very", "just", "only",
}

// Russian function words, particles and pronouns. Hyphenated entries are
// listed both with and without the hyphen since punctuation is stripped
// before the second lookup.
var russianStopWords = []string{
	"и", "в", "не", "на", "с", "по", "за", "к", "от", "из",
	"до", "у", "для", "о", "перед", "через", "ох", "ой", "пли", "ух",
	"фу", "фи", "ага", "ах", "апчхи", "увы", "тьфу", "да", "пусть", "пускай",
	"давайте", "давай", "бы", "б", "бывало", "нет", "вовсе", "отнюдь", "никак", "неужели",
	"разве", "вон", "именно", "прямо", "точь-в-точь", "точьвточь", "только", "лишь", "исключительно", "почти",
	"единственно", "даже", "ни", "же", "ведь", "уж", "всё-таки", "всётаки", "всё", "ка",
	"то", "я", "ты", "он", "она", "оно", "они", "себя", "что", "кто",
	"некто", "нечто", "никто", "ничто", "мой", "моя", "моё", "мои", "ваш", "наш",
	"чей", "который", "никакой", "некий", "какой", "как", "будто", "все", "весь", "всяк",
	"всякий", "любой", "каждый", "сам", "самый", "другой", "иной", "но", "под", "так",
}
