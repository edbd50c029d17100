package main

import (
	"os"

	"github.com/spf13/cobra"
)

const exampleConfig = `# sortnbackup configuration
sources:
  camera:
    path: /media/camera
    ignore_paths: [cache]

targets:
  backup: /mnt/backup

file_groups:
  - name: image_no_thumb
    filter:
      all:
        - has_extension: [png, jpg, jpeg]
        - has_img_metadata
        - has_img_date_time
        - img_size: {min: 300}
    rule:
      copy_to:
        target: backup
        path:
          - file_name: Images
          - img_date_time: "%Y-%m"
          - img_date_time: "%d"
          - file_name_with_extension

  - name: thumbnails
    filter:
      has_extension: [png, jpg, jpeg]
    rule:
      copy_to:
        target: backup
        path:
          - file_name: Thumbnails
          - file_extension
          - file_name_with_extension

  - name: remaining_dirs
    filter: is_dir
    # traverse is the default rule

settings:
  file_size_style: binary
  collision_policy: ask
`

var genconfigCmd = &cobra.Command{
	Use:   "genconfig",
	Short: "Print an example configuration",
	Run: func(cmd *cobra.Command, args []string) {
		// The example contains strftime verbs, so it must not go through
		// a printf-family writer.
		_, _ = os.Stdout.WriteString(exampleConfig)
	},
}
