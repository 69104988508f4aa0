package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zoeyai/osim/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "管理本地配置",
		Annotations: map[string]string{annotationSkipSetup: "true"},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "写入默认配置文件",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := configManager()
			if manager.Exists() && !force {
				return fmt.Errorf("配置文件已存在: %s (使用 --force 覆盖)", manager.GetConfigFile())
			}
			if err := manager.Save(config.Default()); err != nil {
				return err
			}
			fmt.Printf("[INFO] 配置已保存到 %s\n", manager.GetConfigFile())
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "覆盖已有配置")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "显示合并后的配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func configManager() *config.Manager {
	if flags.configFile != "" {
		return config.NewManagerWithFile(flags.configFile)
	}
	return config.NewManager()
}
