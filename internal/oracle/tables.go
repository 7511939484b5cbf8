package oracle

// Trigram is one of the eight three-line figures.
type Trigram struct {
	Binary   string `json:"binary"`
	Name     string `json:"name"`
	Chinese  string `json:"chinese"`
	Nature   string `json:"nature"`
	NatureZh string `json:"nature_zh"`
}

// Hexagram is one of the sixty-four six-line figures, numbered in King Wen order.
type Hexagram struct {
	Number     int    `json:"number"`
	Binary     string `json:"binary"`
	Name       string `json:"name"`
	Chinese    string `json:"chinese"`
	English    string `json:"english"`
	Judgment   string `json:"judgment"`
	JudgmentZh string `json:"judgment_zh"`
}

// Indexed by the trigram's 3-bit key (line 0 is bit 0).
var trigramTable = [8]Trigram{
	7: {"111", "Qian", "乾", "Heaven", "天"},
	3: {"110", "Dui", "兑", "Lake", "泽"},
	5: {"101", "Li", "离", "Fire", "火"},
	1: {"100", "Zhen", "震", "Thunder", "雷"},
	6: {"011", "Xun", "巽", "Wind", "风"},
	2: {"010", "Kan", "坎", "Water", "水"},
	4: {"001", "Gen", "艮", "Mountain", "山"},
	0: {"000", "Kun", "坤", "Earth", "地"},
}

// trigramOrder lists trigram keys in the traditional Qian..Kun sequence.
var trigramOrder = [8]int{7, 3, 5, 1, 6, 2, 4, 0}

// Binary keys read bottom line first: lower trigram, then upper trigram.
var hexagramTable = [64]Hexagram{
	{1, "111111", "Qian", "乾", "The Creative", "Sublime success, furthering through perseverance.", "元亨利贞。"},
	{2, "000000", "Kun", "坤", "The Receptive", "Sublime success, furthering through the perseverance of a mare.", "元亨，利牝马之贞。"},
	{3, "100010", "Zhun", "屯", "Difficulty at the Beginning", "Supreme success. Perseverance furthers. It furthers one to appoint helpers.", "元亨利贞，勿用有攸往，利建侯。"},
	{4, "010001", "Meng", "蒙", "Youthful Folly", "Success. It is not I who seek the young fool; the young fool seeks me.", "亨。匪我求童蒙，童蒙求我。"},
	{5, "111010", "Xu", "需", "Waiting", "If you are sincere, you have light and success. It furthers one to cross the great water.", "有孚，光亨，贞吉，利涉大川。"},
	{6, "010111", "Song", "讼", "Conflict", "A cautious halt halfway brings good fortune. Going through to the end brings misfortune.", "有孚窒惕，中吉，终凶。利见大人，不利涉大川。"},
	{7, "010000", "Shi", "师", "The Army", "The army needs perseverance and a strong man. Good fortune without blame.", "贞，丈人吉，无咎。"},
	{8, "000010", "Bi", "比", "Holding Together", "Holding together brings good fortune.", "吉。原筮元永贞，无咎。"},
	{9, "111011", "Xiao Chu", "小畜", "The Taming Power of the Small", "Success. Dense clouds, no rain from our western region.", "亨。密云不雨，自我西郊。"},
	{10, "110111", "Lü", "履", "Treading", "Treading upon the tail of the tiger. It does not bite the man. Success.", "履虎尾，不咥人，亨。"},
	{11, "111000", "Tai", "泰", "Peace", "The small departs, the great approaches. Good fortune. Success.", "小往大来，吉亨。"},
	{12, "000111", "Pi", "否", "Standstill", "The great departs; the small approaches.", "否之匪人，不利君子贞，大往小来。"},
	{13, "101111", "Tong Ren", "同人", "Fellowship with Men", "Fellowship with men in the open. Success. It furthers one to cross the great water.", "同人于野，亨。利涉大川，利君子贞。"},
	{14, "111101", "Da You", "大有", "Possession in Great Measure", "Supreme success.", "元亨。"},
	{15, "001000", "Qian", "谦", "Modesty", "Modesty creates success. The superior man carries things through.", "亨，君子有终。"},
	{16, "000100", "Yu", "豫", "Enthusiasm", "It furthers one to install helpers and to set armies marching.", "利建侯行师。"},
	{17, "100110", "Sui", "随", "Following", "Supreme success. Perseverance furthers. No blame.", "元亨利贞，无咎。"},
	{18, "011001", "Gu", "蛊", "Work on What Has Been Spoiled", "Supreme success. It furthers one to cross the great water.", "元亨，利涉大川。先甲三日，后甲三日。"},
	{19, "110000", "Lin", "临", "Approach", "Supreme success. Perseverance furthers. When the eighth month comes, there will be misfortune.", "元亨利贞。至于八月有凶。"},
	{20, "000011", "Guan", "观", "Contemplation", "The ablution has been made, but not yet the offering. Full of trust they look up to him.", "盥而不荐，有孚颙若。"},
	{21, "100101", "Shi He", "噬嗑", "Biting Through", "Success. It is favorable to let justice be administered.", "亨。利用狱。"},
	{22, "101001", "Bi", "贲", "Grace", "Success. In small matters it is favorable to undertake something.", "亨。小利有攸往。"},
	{23, "000001", "Bo", "剥", "Splitting Apart", "It does not further one to go anywhere.", "不利有攸往。"},
	{24, "100000", "Fu", "复", "Return", "Success. Going out and coming in without error. Friends come without blame.", "亨。出入无疾，朋来无咎。反复其道，七日来复，利有攸往。"},
	{25, "100111", "Wu Wang", "无妄", "Innocence", "Supreme success. Perseverance furthers. If someone is not as he should be, he has misfortune.", "元亨利贞。其匪正有眚，不利有攸往。"},
	{26, "111001", "Da Chu", "大畜", "The Taming Power of the Great", "Perseverance furthers. Not eating at home brings good fortune.", "利贞，不家食吉，利涉大川。"},
	{27, "100001", "Yi", "颐", "The Corners of the Mouth", "Perseverance brings good fortune. Pay heed to the providing of nourishment.", "贞吉。观颐，自求口实。"},
	{28, "011110", "Da Guo", "大过", "Preponderance of the Great", "The ridgepole sags to the breaking point. It furthers one to have somewhere to go.", "栋桡，利有攸往，亨。"},
	{29, "010010", "Kan", "坎", "The Abysmal", "If you are sincere, you have success in your heart, and whatever you do succeeds.", "习坎，有孚，维心亨，行有尚。"},
	{30, "101101", "Li", "离", "The Clinging", "Perseverance furthers. It brings success. Care of the cow brings good fortune.", "利贞，亨。畜牝牛，吉。"},
	{31, "001110", "Xian", "咸", "Influence", "Success. Perseverance furthers. To take a maiden to wife brings good fortune.", "亨，利贞，取女吉。"},
	{32, "011100", "Heng", "恒", "Duration", "Success. No blame. Perseverance furthers. It furthers one to have somewhere to go.", "亨，无咎，利贞，利有攸往。"},
	{33, "001111", "Dun", "遁", "Retreat", "Success. In what is small, perseverance furthers.", "亨，小利贞。"},
	{34, "111100", "Da Zhuang", "大壮", "The Power of the Great", "Perseverance furthers.", "利贞。"},
	{35, "000101", "Jin", "晋", "Progress", "The powerful prince is honored with horses in large numbers.", "康侯用锡马蕃庶，昼日三接。"},
	{36, "101000", "Ming Yi", "明夷", "Darkening of the Light", "In adversity it furthers one to be persevering.", "利艰贞。"},
	{37, "101011", "Jia Ren", "家人", "The Family", "The perseverance of the woman furthers.", "利女贞。"},
	{38, "110101", "Kui", "睽", "Opposition", "In small matters, good fortune.", "小事吉。"},
	{39, "001010", "Jian", "蹇", "Obstruction", "The southwest furthers. The northeast does not further. It furthers one to see the great man.", "利西南，不利东北；利见大人，贞吉。"},
	{40, "010100", "Xie", "解", "Deliverance", "The southwest furthers. Return brings good fortune.", "利西南，无所往，其来复吉。有攸往，夙吉。"},
	{41, "110001", "Sun", "损", "Decrease", "Decrease combined with sincerity brings about supreme good fortune without blame.", "有孚，元吉，无咎，可贞，利有攸往。"},
	{42, "100011", "Yi", "益", "Increase", "It furthers one to undertake something. It furthers one to cross the great water.", "利有攸往，利涉大川。"},
	{43, "111110", "Guai", "夬", "Break-through", "One must resolutely make the matter known at the court of the king.", "扬于王庭，孚号有厉。"},
	{44, "011111", "Gou", "姤", "Coming to Meet", "The maiden is powerful. One should not marry such a maiden.", "女壮，勿用取女。"},
	{45, "000110", "Cui", "萃", "Gathering Together", "Success. The king approaches his temple. It furthers one to see the great man.", "亨。王假有庙，利见大人，亨，利贞。"},
	{46, "011000", "Sheng", "升", "Pushing Upward", "Supreme success. Fear not. Departure toward the south brings good fortune.", "元亨，用见大人，勿恤，南征吉。"},
	{47, "010110", "Kun", "困", "Oppression", "Success. Perseverance. The great man brings about good fortune. No blame.", "亨，贞，大人吉，无咎。有言不信。"},
	{48, "011010", "Jing", "井", "The Well", "The town may be changed, but the well cannot be changed.", "改邑不改井，无丧无得，往来井井。"},
	{49, "101110", "Ge", "革", "Revolution", "On your own day you are believed. Supreme success. Remorse disappears.", "巳日乃孚，元亨利贞，悔亡。"},
	{50, "011101", "Ding", "鼎", "The Cauldron", "Supreme good fortune. Success.", "元吉，亨。"},
	{51, "100100", "Zhen", "震", "The Arousing", "Shock brings success. Shock comes, oh, oh! Laughing words, ha, ha!", "亨。震来虩虩，笑言哑哑。"},
	{52, "001001", "Gen", "艮", "Keeping Still", "Keeping his back still so that he no longer feels his body. No blame.", "艮其背，不获其身，行其庭，不见其人，无咎。"},
	{53, "001011", "Jian", "渐", "Development", "The maiden is given in marriage. Good fortune. Perseverance furthers.", "女归吉，利贞。"},
	{54, "110100", "Gui Mei", "归妹", "The Marrying Maiden", "Undertakings bring misfortune. Nothing that would further.", "征凶，无攸利。"},
	{55, "101100", "Feng", "丰", "Abundance", "Abundance has success. Be not sad. Be like the sun at midday.", "亨，王假之，勿忧，宜日中。"},
	{56, "001101", "Lü", "旅", "The Wanderer", "Success through smallness. Perseverance brings good fortune to the wanderer.", "小亨，旅贞吉。"},
	{57, "011011", "Xun", "巽", "The Gentle", "Success through what is small. It furthers one to have somewhere to go.", "小亨，利有攸往，利见大人。"},
	{58, "110110", "Dui", "兑", "The Joyous", "Success. Perseverance is favorable.", "亨，利贞。"},
	{59, "010011", "Huan", "涣", "Dispersion", "Success. The king approaches his temple. It furthers one to cross the great water.", "亨。王假有庙，利涉大川，利贞。"},
	{60, "110010", "Jie", "节", "Limitation", "Success. Galling limitation must not be persevered in.", "亨。苦节不可贞。"},
	{61, "110011", "Zhong Fu", "中孚", "Inner Truth", "Pigs and fishes. Good fortune. It furthers one to cross the great water.", "豚鱼吉，利涉大川，利贞。"},
	{62, "001100", "Xiao Guo", "小过", "Preponderance of the Small", "Small things may be done; great things should not be done.", "亨，利贞，可小事，不可大事。"},
	{63, "101010", "Ji Ji", "既济", "After Completion", "Success in small matters. At the beginning good fortune, at the end disorder.", "亨小，利贞，初吉终乱。"},
	{64, "010101", "Wei Ji", "未济", "Before Completion", "Success. But if the little fox gets his tail in the water, there is nothing that would further.", "亨。小狐汔济，濡其尾，无攸利。"},
}

// hexagramIndex maps a 6-bit key to its position in hexagramTable.
var hexagramIndex [64]int

func init() {
	var seen [64]bool
	for i, h := range hexagramTable {
		if h.Number != i+1 {
			panic("oracle: hexagram table out of order at " + h.Binary)
		}
		k, ok := parseKey(h.Binary, 6)
		if !ok || seen[k] {
			panic("oracle: bad or duplicate hexagram key " + h.Binary)
		}
		seen[k] = true
		hexagramIndex[k] = i
	}
	for k, t := range trigramTable {
		if got, ok := parseKey(t.Binary, 3); !ok || got != k {
			panic("oracle: trigram table mismatch at " + t.Binary)
		}
	}
}

// Trigrams returns the eight trigrams in traditional order.
func Trigrams() []Trigram {
	out := make([]Trigram, 0, len(trigramOrder))
	for _, k := range trigramOrder {
		out = append(out, trigramTable[k])
	}
	return out
}

// Hexagrams returns the sixty-four hexagrams in King Wen order.
func Hexagrams() []Hexagram {
	out := make([]Hexagram, len(hexagramTable))
	copy(out, hexagramTable[:])
	return out
}

// HexagramByNumber returns hexagram n (1-64).
func HexagramByNumber(n int) (Hexagram, bool) {
	if n < 1 || n > len(hexagramTable) {
		return Hexagram{}, false
	}
	return hexagramTable[n-1], true
}

// Lower returns the trigram formed by the bottom three lines.
func (h Hexagram) Lower() Trigram {
	k, _ := parseKey(h.Binary[:3], 3)
	return trigramTable[k]
}

// Upper returns the trigram formed by the top three lines.
func (h Hexagram) Upper() Trigram {
	k, _ := parseKey(h.Binary[3:], 3)
	return trigramTable[k]
}

// Title is the display name in the given language.
func (h Hexagram) Title(lang Language) string {
	if lang == Chinese {
		return h.Chinese
	}
	return h.Name + " (" + h.English + ")"
}

// JudgmentText returns the judgment in the given language.
func (h Hexagram) JudgmentText(lang Language) string {
	if lang == Chinese && h.JudgmentZh != "" {
		return h.JudgmentZh
	}
	return h.Judgment
}

// Title is the display name in the given language.
func (t Trigram) Title(lang Language) string {
	if lang == Chinese {
		return t.Chinese + t.NatureZh
	}
	return t.Name + " (" + t.Nature + ")"
}
