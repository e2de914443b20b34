package summarizer

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		"Encode Summary":    "エンコードサマリー",
		"Generated":         "生成日時",
		"Item":              "項目",
		"Value":             "値",
		"Output":            "出力先",
		"File":              "ファイル",
		"Format":            "形式",
		"Encoder":           "エンコーダー",
		"Codec":             "コーデック",
		"File Size":         "ファイルサイズ",
		"Settings":          "設定",
		"Source":            "入力",
		"Frame Rate":        "フレームレート",
		"Preset":            "プリセット",
		"Options":           "オプション",
		"Input Layout":      "入力レイアウト",
		"Video":             "動画",
		"Size":              "サイズ",
		"Stream Frame Rate": "ストリームのフレームレート",
		"Time Base":         "タイムベース",
		"Frames":            "フレーム数",
		"Packets":           "パケット数",
		"Payload":           "ペイロード",
		"Duration":          "長さ",
		"Bitrate":           "ビットレート",
		"Elapsed":           "経過時間",
	})
}
