package router

import (
	"github.com/gin-gonic/gin"

	"neor/internal/handlers"
	"neor/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Post    *handlers.PostHandler
	Comment *handlers.CommentHandler
	User    *handlers.UserHandler
	Theme   *handlers.ThemeHandler
	File    *handlers.FileHandler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// 操作页面需要登录，未登录跳转到 /sign-in?back=
	authed := middleware.AuthRequired()

	// 公共页面 (Pages)
	r.GET("/", h.Post.Index)                         // 首页 - 最新文章 / 标题搜索
	r.GET("/tag/:tag", h.Post.ByTag)                 // 标签下的文章列表
	r.GET("/post/create", authed, h.Post.ShowCreate) // 发布文章页面
	r.GET("/post/:id", h.Post.Detail)                // 文章详情页 + 评论
	r.GET("/post/:id/edit", authed, h.Post.ShowEdit)
	r.GET("/post/:id/delete", authed, h.Post.ShowDelete)
	r.GET("/post/:id/anonymise", authed, h.Post.ShowAnonymise)

	r.GET("/comment/create", authed, h.Comment.ShowCreate) // 发表评论 / 回复
	r.GET("/comment/:id/edit", authed, h.Comment.ShowEdit)
	r.GET("/comment/:id/delete", authed, h.Comment.ShowDelete)
	r.GET("/comment/:id/anonymise", authed, h.Comment.ShowAnonymise)

	r.GET("/user/:username", h.User.Profile) // 用户主页
	r.GET("/user/:username/edit", authed, h.User.ShowEdit)
	r.GET("/user/:username/admin", authed, h.User.ShowAdmin)

	r.GET("/sign-up", h.Auth.ShowSignUp)                       // 注册页面
	r.GET("/sign-in", h.Auth.ShowSignIn)                       // 登录页面
	r.GET("/sign-out", h.Auth.SignOut)                         // 退出登录（轮换 session）
	r.GET("/email-verification", h.Auth.ShowEmailVerification) // 邮箱验证
	r.GET("/password-reset", h.Auth.ShowPasswordReset)         // 找回密码
	r.GET("/password-change", h.Auth.ShowPasswordChange)       // 用验证码设置新密码

	r.GET("/switch-theme", h.Theme.Switch)
	r.GET("/style.css", h.Theme.Style)
	r.GET("/files/:filename", h.File.Serve)

	// 表单提交 (APIs)，统一 303 跳转
	api := r.Group("/api")
	{
		api.POST("/sign-up", h.Auth.SignUp)
		api.POST("/sign-in", h.Auth.SignIn)
		api.POST("/email-verification", h.Auth.VerifyEmail)
		api.POST("/password-reset", h.Auth.PasswordReset)
		api.POST("/password-change", h.Auth.PasswordChange)

		api.POST("/post/create", h.Post.Create)
		api.POST("/post/edit", h.Post.Edit)
		api.POST("/post/delete", h.Post.Delete)
		api.POST("/post/anonymise", h.Post.Anonymise)

		api.POST("/comment/create", h.Comment.Create)
		api.POST("/comment/edit", h.Comment.Edit)
		api.POST("/comment/delete", h.Comment.Delete)
		api.POST("/comment/anonymise", h.Comment.Anonymise)

		api.POST("/user/edit", h.User.Edit)
		api.POST("/user/admin", h.User.Admin)
	}

	r.NoRoute(handlers.RenderNotFound)
}
