// Package web 内嵌演讲现场使用的讲者页与观众页
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const (
	AudiencePage  = "audience.html"
	PresenterPage = "presenter.html"
)

// PageData 页面渲染参数
type PageData struct {
	DomainName string
	ClientIP   string // 观众提交评论时作为 user_ip
}

// Templates 解析全部内嵌模板
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Static 静态资源文件系统，挂载在 /static 下
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// 目录在编译期内嵌，不会出错
		panic(err)
	}
	return http.FS(sub)
}
