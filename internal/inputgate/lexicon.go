package inputgate

// Bilingual lexicons for the four input risk categories. Hit counting is
// case-insensitive substring matching, so multi-word English phrases count
// wherever they appear.

var ambiguityJA = []string{
	"なんか", "とか", "なんとなく", "適当に", "いい感じに", "うまく",
	"よしなに", "それっぽく", "ざっくり", "てきとう", "ふわっと",
	"なんでもいい", "おまかせ", "どうにか",
}

var ambiguityEN = []string{
	"something like", "somehow", "whatever", "kind of", "sort of",
	"just do it", "figure it out", "make it work",
	"anything", "stuff", "things",
}

var assertionJA = []string{
	"絶対", "必ず", "断言して", "確実に", "100%", "間違いない",
	"保証して", "確定で", "例外なく", "完全に正しい",
}

var assertionEN = []string{
	"absolutely", "definitely", "guarantee", "must be", "certainly",
	"without doubt", "100%", "always true", "never wrong", "prove that",
}

var emotionJA = []string{
	"急いで", "今すぐ", "早く", "できないの", "使えない",
	"お願いだから", "頼むから", "なんで", "いい加減にして",
	"ふざけるな", "ちゃんとして", "まだ", "いつまで",
}

var emotionEN = []string{
	"hurry", "asap", "right now", "useless",
	"please just", "why can't", "come on",
	"seriously", "for god's sake", "how hard can it be",
}

var unrealisticJA = []string{
	"全て解決", "完璧に", "一瞬で", "万能な", "無限に",
	"失敗しない", "バグのない", "最強の", "究極の", "永久に",
	"全自動で", "ワンクリックで", "何でもできる",
}

var unrealisticEN = []string{
	"solve everything", "perfect", "instantly", "omnipotent", "infinite",
	"never fail", "bug-free", "ultimate", "forever",
	"fully automatic", "one click", "do anything", "solve all",
}
