package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Level prefixes
		"warning": "警告",
		"error":   "エラー",

		// Orchestration level messages (info)
		"Starting pipeline":               "パイプラインを開始します",
		"Pipeline completed successfully": "パイプラインが正常に完了しました",
		"Output saved to %s":              "出力を %s に保存しました",
		"Summary saved to %s":             "サマリーを %s に保存しました",
		"Loading %d images":               "%d 枚の画像を読み込み中",
		"Generating %d %s frames":         "%d フレームの %s パターンを生成中",
		"Encoding %d frames at %dx%d":     "%d フレームを %dx%d でエンコード中",
		"Video encoded: %d bytes":         "動画エンコード完了: %d バイト",
		"Failed to prepare frames: %s":    "フレームの準備に失敗しました: %s",
		"Failed to encode video: %s":      "動画のエンコードに失敗しました: %s",

		// Source stage
		"Loaded %s":                          "%s を読み込みました",
		"Generating %d %s frames at %dx%d":   "%d フレームの %s パターンを %dx%d で生成中",
		"Encoding %d frames with %s into %s": "%d フレームを %s で %s にエンコード中",

		// Writer
		"Could not find output format for %s, falling back to %s": "%s の出力形式が見つからないため %s を使用します",
		"the following key/value options were not found: %s":      "次のキー/値オプションは使用されませんでした: %s",
		"Opened %s (%s, %s, %dx%d, %s fps)":                       "%s を開きました (%s, %s, %dx%d, %s fps)",
		"Released %s: %d frames, %d packets, %d bytes":            "%s を解放しました: %d フレーム, %d パケット, %d バイト",
		"Releasing unreachable writer failed: %v":                 "到達不能なライターの解放に失敗しました: %v",
		"Teardown after failed open: %v":                          "オープン失敗後の後始末でエラー: %v",
		"Closing encoder: %v":                                     "エンコーダーのクローズ: %v",
		"Failed to encode stream info: %v":                        "ストリーム情報のエンコードに失敗しました: %v",
		"Failed to save stream info: %v":                          "ストリーム情報の保存に失敗しました: %v",
		"Failed to save packet: %v":                               "パケットの保存に失敗しました: %v",

		// Muxers and encoders
		"starting %s %s":                            "%s %s を起動中",
		"timescale %d for time base %s":             "タイムベース %[2]s のタイムスケールは %[1]d",
		"wrote %d fragments":                        "%d フラグメントを書き込みました",
		"no packets written, %s file has no header": "パケットが書き込まれていないため %s ファイルにヘッダーがありません",
	})
}
