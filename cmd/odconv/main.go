package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/634287319/onedrive-direct-link/internal/app/onedrive"
)

// odconv 是批量转换的命令行入口：从文件或参数读入分享链接，
// 按输入顺序输出结果；任何一条失败则退出码为 1。
//
// 用法：
//
//	odconv [flags] <url>...
//	odconv -f urls.txt
func main() {
	var (
		file            = flag.String("f", "", "从文件读取链接，一行一条（- 表示标准输入）")
		concurrency     = flag.Int("c", 4, "并发数")
		timeout         = flag.Duration("timeout", 15*time.Second, "单条链接的解析超时")
		follow          = flag.Bool("follow", false, "跟随重定向，输出带签名的临时直链")
		noDownloadParam = flag.Bool("no-download-param", false, "个人版兜底时不追加 download=1 参数")
	)
	flag.Parse()

	urls, err := collectURLs(*file, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "odconv:", err)
		os.Exit(2)
	}
	if len(urls) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	conv := onedrive.NewConverter(nil, nil, "")
	policy := onedrive.RedirectPolicy{
		FollowRedirects:     *follow,
		Timeout:             *timeout,
		AppendDownloadParam: !*noDownloadParam,
	}

	results := conv.ConvertAll(context.Background(), urls, policy, *concurrency)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s\n  错误: %s\n", r.Input, r.Err.Hint)
			continue
		}
		fmt.Println(r.Result.DirectURL)
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "odconv: %d/%d 条转换失败\n", failed, len(results))
		os.Exit(1)
	}
}

// collectURLs 合并文件与命令行参数里的链接，忽略空行和 # 注释行。
func collectURLs(file string, args []string) ([]string, error) {
	urls := make([]string, 0, len(args))

	if file != "" {
		in := os.Stdin
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			in = f
		}
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			urls = append(urls, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			urls = append(urls, arg)
		}
	}
	return urls, nil
}
