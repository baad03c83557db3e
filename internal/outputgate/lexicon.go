package outputgate

// contradictionPairs count a hit only when both the confident phrase and the
// hedging phrase co-occur in the same text.
var contradictionPairs = [][2]string{
	{"必ず", "かもしれません"}, {"絶対に", "可能性があります"},
	{"確実に", "不確実"}, {"always", "sometimes"},
	{"never", "occasionally"}, {"definitely", "might"},
	{"100%", "uncertain"},
}

var softenJA = [][2]string{
	{"必ず", "多くの場合"}, {"絶対に", "ほぼ"},
	{"間違いなく", "おそらく"}, {"確実に", "高い確率で"},
}

var softenEN = [][2]string{
	{"definitely", "likely"}, {"absolutely", "very likely"},
	{"certainly", "probably"}, {"always", "typically"},
	{"never", "rarely"},
}

var assertTokens = []string{
	"必ず", "絶対", "間違いなく", "確実", "100%",
	"definitely", "absolutely", "certainly", "always", "never",
}

var provocativeTokens = []string{
	"バカ", "アホ", "ふざけるな", "舐めるな", "ゴミ",
	"使えない", "役に立たない",
	"idiot", "stupid", "shut up", "trash", "useless",
}

var evidenceMarkers = []string{
	"出典", "引用", "根拠", "データ", "論文", "参考", "URL", "リンク",
	"source", "citation", "evidence", "data", "paper", "study", "link", "http://", "https://",
}
