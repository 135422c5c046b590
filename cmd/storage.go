package cmd

import (
	"fmt"
	"time"

	"Spitbox/storage"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	storagePrefix string
	storageStats  bool
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "查看音频存储",
	Long:  `列出已配置存储后端 (local、minio 或 s3) 中的音频文件，或显示文件类型统计信息。`,
	Example: `  # 列出所有文件
  spitbox storage

  # 按前缀过滤文件
  spitbox storage -p "1700"

  # 显示统计信息
  spitbox storage -s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := storage.NewBackendFromConfig(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("初始化存储失败: %w", err)
		}
		lister, ok := backend.(storage.Lister)
		if !ok {
			return fmt.Errorf("storage backend %s cannot list objects", backend.Name())
		}

		objects, err := lister.List(cmd.Context(), storagePrefix)
		if err != nil {
			return fmt.Errorf("列出文件失败: %w", err)
		}

		if storageStats {
			stats := storage.Summarize(objects)
			fmt.Printf("后端: %s\n", backend.Name())
			fmt.Printf("总大小: %s\n", humanize.Bytes(uint64(stats.TotalSize)))
			fmt.Printf("对象数量: %s\n", humanize.Comma(stats.Objects))
			if !stats.LastModified.IsZero() {
				fmt.Printf("最后修改时间: %s\n", stats.LastModified.Format(time.RFC3339))
			}
			rows := make([][]string, 0, len(stats.ByExtension))
			for _, ext := range stats.Extensions() {
				rows = append(rows, []string{ext, humanize.Comma(stats.ByExtension[ext])})
			}
			fmt.Println(renderTable([]string{"Type", "Files"}, rows, 2))
			return nil
		}

		rows := make([][]string, 0, len(objects))
		for _, obj := range objects {
			rows = append(rows, []string{
				obj.Key,
				humanize.Bytes(uint64(obj.Size)),
				humanize.Time(obj.LastModified),
			})
		}
		fmt.Println(renderTable([]string{"Key", "Size", "Modified"}, rows, 2))
		return nil
	},
}

func init() {
	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "按前缀过滤文件")
	storageCmd.Flags().BoolVarP(&storageStats, "stats", "s", false, "显示统计信息")
	rootCmd.AddCommand(storageCmd)
}
