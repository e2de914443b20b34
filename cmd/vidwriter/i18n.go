// Package main provides localization for the vidwriter CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":  "出力先",
		"Writer":  "ライター設定",
		"Source":  "入力",
		"Debug":   "デバッグ",
		"Logging": "ログ",

		// Root command
		"Encode frames into video files": "フレームを動画ファイルにエンコード",
		"vidwriter encodes still images or a synthetic test pattern into a video file. The container is chosen from the output extension and the encoder from the container.": "vidwriterは静止画または合成テストパターンを動画ファイルにエンコードします。コンテナは出力ファイルの拡張子から、エンコーダーはコンテナから選ばれます。",
		"Error: %s": "エラー: %s",

		// Commands
		"Encode image files into a video":        "画像ファイルを動画にエンコード",
		"Encode a synthetic test pattern":        "合成テストパターンをエンコード",
		"Inspect the video track of an MP4 file": "MP4ファイルの映像トラックを調査",
		"List the available encoders":            "利用可能なエンコーダーを一覧表示",
		"List the available output formats":      "利用可能な出力形式を一覧表示",
		"at least one image is required":         "画像を1つ以上指定してください",
		"exactly one file is required":           "ファイルを1つだけ指定してください",

		// Output flags
		"YAML configuration file":                               "YAML設定ファイル",
		"Output file path; the extension selects the container": "出力ファイルパス（拡張子でコンテナを選択）",
		"Output execution summary to file (Markdown format)":    "実行サマリーをファイルに出力（Markdown形式）",

		// Writer flags
		"Frame rate (default: 25)":                                                 "フレームレート（デフォルト: 25）",
		"Encoder name (default: chosen by the container)":                          "エンコーダー名（デフォルト: コンテナが選択）",
		"Encoder options as key=value pairs":                                       "key=value 形式のエンコーダーオプション",
		"Separator between option pairs (default: ,)":                              "オプション間の区切り文字（デフォルト: ,）",
		"Quality preset (low, medium, high)":                                       "品質プリセット（low, medium, high）",
		"Force the container format by name":                                       "コンテナ形式を名前で指定",
		"Feed single-channel gray input":                                           "1チャンネルのグレースケールで入力",
		"Feed RGB instead of BGR input":                                            "BGRではなくRGBで入力",
		"Repeat the last frame this many times":                                    "最終フレームを繰り返す回数",
		"Frame width":                                                              "フレームの幅",
		"Frame height":                                                             "フレームの高さ",
		"Background color (hex, e.g., #101010)":                                    "背景色（16進数、例: #101010）",
		"Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg実行ファイルのパス（未指定時はFFMPEG_PATH環境変数、次にPATH）",
		"Path to the ffmpeg executable":                                            "ffmpeg実行ファイルのパス",

		// Source flags
		"Test pattern (bars, gradient, solid)": "テストパターン（bars, gradient, solid）",
		"Number of frames to generate":         "生成するフレーム数",
		"Do not draw the frame number":         "フレーム番号を描画しない",

		// Debug and logging flags
		"Save the stream description and packets": "ストリーム情報とパケットを保存",
		"Directory for debug output":              "デバッグ出力ディレクトリ",
		"Log level (debug, info, warn, error)":    "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                 "すべてのログ出力を抑制",

		// Probe
		"Print the result as JSON": "結果をJSONで出力",
		"Codec":                    "コーデック",
		"Size":                     "サイズ",
		"Timescale":                "タイムスケール",
		"Fragmented":               "フラグメント化",
		"Samples":                  "サンプル数",
		"Keyframes":                "キーフレーム数",
		"Start":                    "開始",
		"Duration":                 "長さ",

		// Listings
		"NAME":          "名前",
		"CODEC":         "コーデック",
		"PIXEL FORMATS": "ピクセル形式",
		"DESCRIPTION":   "説明",
		"EXTENSIONS":    "拡張子",
		"DEFAULT CODEC": "既定のコーデック",
		"(ffmpeg not found: libx264, libvpx, libvpx-vp9 and libaom-av1 are unavailable)": "（ffmpegが見つかりません: libx264, libvpx, libvpx-vp9, libaom-av1 は利用できません）",

		// Summary
		"%s pattern": "%s パターン",
		"%d images":  "%d 枚の画像",
	})
}
