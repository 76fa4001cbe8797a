// handlers/courses.go - Course and enrollment endpoints
package handlers

import (
	"edscrum/middleware"
	"edscrum/models"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse creates a course owned by the authenticated teacher.
// POST /api/courses
func CreateCourse(c *fiber.Ctx) error {
	teacherID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string `json:"name"`
		Tag         string `json:"tag"`
		Code        string `json:"code"`
		Description string `json:"description"`
		Semester    int    `json:"semester"`
		Year        int    `json:"year"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Course name is required"})
	}

	course := models.Course{
		Name:        req.Name,
		Tag:         req.Tag,
		Code:        req.Code,
		Description: req.Description,
		Semester:    req.Semester,
		Year:        req.Year,
	}
	if err := courseService.CreateCourse(teacherID, &course); err != nil {
		return fail(c, err)
	}

	// Code is hidden from course JSON; return it once so the teacher can
	// share it with students.
	return c.Status(201).JSON(fiber.Map{"success": true, "course": course, "code": course.Code})
}

// GetCourse retrieves a course with its teacher and projects.
// GET /api/courses/:id
func GetCourse(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	course, err := courseService.GetCourse(courseID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// ListCourses lists all courses, or only the caller's when mine=true.
// GET /api/courses
func ListCourses(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var (
		courses []models.Course
		lerr    error
	)
	if c.Query("mine") == "true" {
		if middleware.GetUserRole(c) == models.RoleTeacher {
			courses, lerr = courseService.ListCoursesByTeacher(userID)
		} else {
			courses, lerr = courseService.ListCoursesByStudent(userID)
		}
	} else {
		courses, lerr = courseService.ListCourses()
	}
	if lerr != nil {
		return fail(c, lerr)
	}

	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

// EnrollInCourse enrolls the authenticated student using the course code.
// POST /api/courses/:id/enroll
func EnrollInCourse(c *fiber.Ctx) error {
	studentID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	courseID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := courseService.Enroll(studentID, courseID, req.Code); err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Enrolled successfully"})
}

// GetEnrolledStudents lists the students enrolled in a course.
// GET /api/courses/:id/students
func GetEnrolledStudents(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	students, err := courseService.EnrolledStudents(courseID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "students": students})
}
