// Package config 统一配置加载：默认值 → YAML 文件 → 环境变量覆盖。
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    Load()
//
// 环境变量按结构体 env tag 级联拼接，前缀 RAGSERVE，
// 例如 RAGSERVE_LLM_HUNYUAN_API_KEY。凭证只经此注入，源码不含字面量。
package config
